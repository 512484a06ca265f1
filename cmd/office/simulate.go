package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpmedinagl/doctors-office/internal/office"
	"github.com/jpmedinagl/doctors-office/internal/seed"
	"github.com/jpmedinagl/doctors-office/internal/simulate"
)

func simulateCmd(a *app) *cobra.Command {
	var (
		operations int
		seedValue  int64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Seed a fake office and drive random bookings and cancellations",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := a.cfg.Sim
			if cmd.Flags().Changed("operations") {
				if operations < 0 {
					return fmt.Errorf("--operations must be >= 0, got %d", operations)
				}
				sim.Operations = operations
			}
			if cmd.Flags().Changed("seed") {
				sim.Seed = seedValue
			}
			if sim.Seed == 0 {
				sim.Seed = time.Now().UnixNano()
			}

			week, err := a.weekFilter()
			if err != nil {
				return err
			}
			if week.IsZero() {
				week = sim.Start
			}

			a.logger.Info("simulation configured",
				zap.Int("doctors", sim.Doctors),
				zap.Int("patients", sim.Patients),
				zap.Int("days", sim.Days),
				zap.Int("operations", sim.Operations),
				zap.Int64("seed", sim.Seed),
				zap.Time("start", sim.Start),
			)

			seeder := seed.New(uint64(sim.Seed), a.logger)
			o := office.New(a.cfg.OfficeName,
				office.WithLogger(a.logger),
				office.WithCancellationLimit(a.cfg.CancellationLimit),
			)

			doctors := seeder.Doctors(sim.Doctors)
			patients := seeder.Patients(sim.Patients, doctors)
			times, err := seeder.Populate(o, doctors, patients, sim.Start, sim.Days)
			if err != nil {
				return fmt.Errorf("seed office: %w", err)
			}

			s := simulate.New(simulate.DefaultConfig(sim.Operations), o, seeder, doctors, times, a.logger)
			s.Run()

			out := cmd.OutOrStdout()
			s.PrintReport(out)
			return writeRecords(out, o.ToScheduleList(week), a.asJSON)
		},
	}

	cmd.Flags().IntVar(&operations, "operations", 0, "number of random operations (overrides SIM_OPERATIONS)")
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (overrides SIM_SEED)")
	return cmd
}
