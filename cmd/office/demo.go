package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpmedinagl/doctors-office/internal/office"
)

func demoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the reference booking and cancellation scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := a.weekFilter()
			if err != nil {
				return err
			}

			o := office.New(a.cfg.OfficeName,
				office.WithLogger(a.logger),
				office.WithCancellationLimit(a.cfg.CancellationLimit),
			)
			if err := runDemo(o, a.cfg.Location, a.logger); err != nil {
				return err
			}

			return writeRecords(cmd.OutOrStdout(), o.ToScheduleList(week), a.asJSON)
		},
	}
}

// runDemo registers two doctors sharing a name, books three patients at the
// same time and cancels one doctor so the patient is moved an hour later.
func runDemo(o *office.Office, loc *time.Location, logger *zap.Logger) error {
	noon := time.Date(2023, time.February, 3, 12, 0, 0, 0, loc)
	afternoon := noon.Add(time.Hour)
	monday := time.Date(2023, time.February, 6, 9, 0, 0, 0, loc)

	doctors := []office.Doctor{
		office.NewDoctor("Nick", 1, "A10"),
		office.NewDoctor("Nick", 2, "B20"),
		office.NewDoctor("Sara", 3, "A11"),
	}
	for _, d := range doctors {
		if err := o.AddDoctor(d); err != nil {
			return fmt.Errorf("add doctor %d: %w", d.ID(), err)
		}
	}

	patients := []office.Patient{
		office.NewPatient("Jp", 2, 1),
		office.NewPatient("Ana", 5, 3),
		office.NewPatient("Leo", 6, 1),
	}
	for _, p := range patients {
		if err := o.AddPatient(p); err != nil {
			return fmt.Errorf("add patient %d: %w", p.ID(), err)
		}
	}

	openings := []struct {
		at       time.Time
		doctorID int
	}{
		{noon, 1},
		{noon, 2},
		{noon, 3},
		{afternoon, 3},
		{monday, 2},
	}
	for _, op := range openings {
		if err := o.ScheduleDoctorAvailability(op.at, op.doctorID); err != nil {
			return fmt.Errorf("open slot for doctor %d: %w", op.doctorID, err)
		}
	}

	for _, id := range []int{2, 6, 5} {
		if err := o.BookPatient(noon, id); err != nil {
			return fmt.Errorf("book patient %d: %w", id, err)
		}
	}

	rebooked, err := o.CancelAppointmentByDoctor(noon, 1)
	if err != nil {
		return fmt.Errorf("cancel doctor 1: %w", err)
	}
	logger.Info("doctor cancelled", zap.Int("doctor_id", 1), zap.Bool("rebooked", rebooked))

	if err := o.CancelAppointmentByPatient(noon, 5); err != nil {
		return fmt.Errorf("cancel patient 5: %w", err)
	}
	return nil
}
