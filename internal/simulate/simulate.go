package simulate

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jpmedinagl/doctors-office/internal/office"
	"github.com/jpmedinagl/doctors-office/internal/seed"
)

type Config struct {
	Operations         int
	BookingRatio       float64
	PatientCancelRatio float64
	DoctorCancelRatio  float64
}

// DefaultConfig books most of the time and cancels now and then.
func DefaultConfig(operations int) Config {
	return Config{
		Operations:         operations,
		BookingRatio:       0.7,
		PatientCancelRatio: 0.2,
		DoctorCancelRatio:  0.1,
	}
}

// normalized scales the ratios so they sum to 1.
func (c Config) normalized() Config {
	total := c.BookingRatio + c.PatientCancelRatio + c.DoctorCancelRatio
	if total > 0 {
		c.BookingRatio /= total
		c.PatientCancelRatio /= total
		c.DoctorCancelRatio /= total
	}
	return c
}

// OperationMetrics counts outcomes. A rejection is an expected domain
// failure such as a full time point.
type OperationMetrics struct {
	Total    int
	Success  int
	Rejected int
	Error    int
}

func (om *OperationMetrics) Record(err error) {
	om.Total++
	switch {
	case err == nil:
		om.Success++
	case isRejection(err):
		om.Rejected++
	default:
		om.Error++
	}
}

type Metrics struct {
	Booking       OperationMetrics
	PatientCancel OperationMetrics
	DoctorCancel  OperationMetrics
	Rebooked      int
	Stranded      int
}

type Simulator struct {
	config  Config
	office  *office.Office
	seeder  *seed.Seeder
	times   []time.Time
	doctors []office.Doctor
	metrics Metrics
	logger  *zap.Logger
}

// New builds a simulator over an already populated office. times are the
// slot times operations pick from.
func New(cfg Config, o *office.Office, s *seed.Seeder, doctors []office.Doctor, times []time.Time, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		config:  cfg.normalized(),
		office:  o,
		seeder:  s,
		times:   times,
		doctors: doctors,
		logger:  logger,
	}
}

func (s *Simulator) Metrics() Metrics { return s.metrics }

func (s *Simulator) Run() {
	if len(s.times) == 0 {
		s.logger.Warn("no slot times to simulate against")
		return
	}

	s.logger.Info("starting simulation", zap.Int("operations", s.config.Operations))

	for i := 0; i < s.config.Operations; i++ {
		r := float64(s.seeder.Intn(1000)) / 1000
		switch {
		case r < s.config.BookingRatio:
			s.doBooking()
		case r < s.config.BookingRatio+s.config.PatientCancelRatio:
			s.doPatientCancel()
		default:
			s.doDoctorCancel()
		}
	}

	s.logger.Info("simulation complete",
		zap.Int("bookings", s.metrics.Booking.Success),
		zap.Int("rebooked", s.metrics.Rebooked),
	)
}

func (s *Simulator) randomTime() time.Time {
	return s.times[s.seeder.Intn(len(s.times))]
}

func (s *Simulator) doBooking() {
	patients := s.office.Patients()
	if len(patients) == 0 {
		return
	}
	p := patients[s.seeder.Intn(len(patients))]
	s.metrics.Booking.Record(s.office.BookPatient(s.randomTime(), p.ID()))
}

func (s *Simulator) doPatientCancel() {
	patients := s.office.Patients()
	if len(patients) == 0 {
		return
	}
	p := patients[s.seeder.Intn(len(patients))]

	booked := s.office.BookedTimes(p.ID())
	at := s.randomTime()
	if len(booked) > 0 {
		at = booked[s.seeder.Intn(len(booked))]
	}
	s.metrics.PatientCancel.Record(s.office.CancelAppointmentByPatient(at, p.ID()))
}

func (s *Simulator) doDoctorCancel() {
	if len(s.doctors) == 0 {
		return
	}
	d := s.doctors[s.seeder.Intn(len(s.doctors))]
	at := s.randomTime()

	hadPatient := false
	for _, r := range s.office.AppointmentsAt(at) {
		if r.Room == d.HomeRoom() && r.Patient != "" {
			hadPatient = true
		}
	}

	rebooked, err := s.office.CancelAppointmentByDoctor(at, d.ID())
	s.metrics.DoctorCancel.Record(err)
	if err != nil || !hadPatient {
		return
	}
	if rebooked {
		s.metrics.Rebooked++
	} else {
		s.metrics.Stranded++
	}
}

func isRejection(err error) bool {
	for _, target := range []error{
		office.ErrNoSlots,
		office.ErrNoOpenSlot,
		office.ErrAlreadyBooked,
		office.ErrAppointmentNotFound,
		office.ErrPatientNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Simulator) PrintReport(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Office: %s\n", s.office.Name())
	fmt.Fprintf(w, "Operations: %d\n", s.config.Operations)
	fmt.Fprintln(w)

	printOperationReport(w, "Booking", &s.metrics.Booking)
	printOperationReport(w, "Patient cancellation", &s.metrics.PatientCancel)
	printOperationReport(w, "Doctor cancellation", &s.metrics.DoctorCancel)

	fmt.Fprintf(w, "Rebooked after doctor cancellation: %d\n", s.metrics.Rebooked)
	fmt.Fprintf(w, "Left without appointment: %d\n", s.metrics.Stranded)
	fmt.Fprintf(w, "Active patients: %d\n", len(s.office.Patients()))
	fmt.Fprintln(w)
}

func printOperationReport(w io.Writer, name string, om *OperationMetrics) {
	if om.Total == 0 {
		return
	}

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", om.Total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", om.Success, percent(om.Success, om.Total))
	if om.Rejected > 0 {
		fmt.Fprintf(w, "  Rejected: %d (%.1f%%)\n", om.Rejected, percent(om.Rejected, om.Total))
	}
	if om.Error > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", om.Error, percent(om.Error, om.Total))
	}
	fmt.Fprintln(w)
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
