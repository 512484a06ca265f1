package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/jpmedinagl/doctors-office/internal/office"
)

const (
	firstHour = 9
	lastHour  = 17 // last appointment starts at 16:00
)

var wings = []string{"A", "B", "C", "D"}

// Seeder generates fake doctors, patients and availability. The same seed
// always produces the same office.
type Seeder struct {
	faker  *gofakeit.Faker
	logger *zap.Logger
}

func New(seed uint64, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		faker:  gofakeit.New(seed),
		logger: logger,
	}
}

// Intn returns a pseudo random number in [0, n).
func (s *Seeder) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return s.faker.Number(0, n-1)
}

// Doctors returns count doctors with ids starting at 1, spread over the wings.
func (s *Seeder) Doctors(count int) []office.Doctor {
	count = max(count, 0)
	doctors := make([]office.Doctor, 0, count)
	for i := 0; i < count; i++ {
		room := fmt.Sprintf("%s%d", wings[i%len(wings)], 10+i/len(wings))
		doctors = append(doctors, office.NewDoctor(s.faker.LastName(), i+1, room))
	}
	return doctors
}

// Patients returns count patients with ids starting at 1001, each with a
// random primary doctor.
func (s *Seeder) Patients(count int, doctors []office.Doctor) []office.Patient {
	count = max(count, 0)
	patients := make([]office.Patient, 0, count)
	for i := 0; i < count; i++ {
		primary := 0
		if len(doctors) > 0 {
			primary = doctors[s.Intn(len(doctors))].ID()
		}
		patients = append(patients, office.NewPatient(s.faker.Name(), 1001+i, primary))
	}
	return patients
}

// Populate registers doctors and patients with o and opens hourly
// availability on weekdays for days working days from start. Each doctor
// works roughly half of the hours. It returns the distinct slot times in
// chronological order.
func (s *Seeder) Populate(o *office.Office, doctors []office.Doctor, patients []office.Patient, start time.Time, days int) ([]time.Time, error) {
	for _, d := range doctors {
		if err := o.AddDoctor(d); err != nil {
			return nil, fmt.Errorf("add doctor %d: %w", d.ID(), err)
		}
	}
	for _, p := range patients {
		if err := o.AddPatient(p); err != nil {
			return nil, fmt.Errorf("add patient %d: %w", p.ID(), err)
		}
	}

	var times []time.Time
	opened := 0
	for _, day := range workingDays(start, days) {
		for hour := firstHour; hour < lastHour; hour++ {
			at := day.Add(time.Duration(hour) * time.Hour)
			used := false
			for _, d := range doctors {
				if s.Intn(2) == 0 {
					continue
				}
				err := o.ScheduleDoctorAvailability(at, d.ID())
				if errors.Is(err, office.ErrRoomOccupied) {
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("open slot for doctor %d: %w", d.ID(), err)
				}
				used = true
				opened++
			}
			if used {
				times = append(times, at)
			}
		}
	}

	s.logger.Info("office seeded",
		zap.Int("doctors", len(doctors)),
		zap.Int("patients", len(patients)),
		zap.Int("slots", opened),
	)
	return times, nil
}

// workingDays returns midnight of the first n weekdays on or after start.
func workingDays(start time.Time, n int) []time.Time {
	y, m, d := start.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	var out []time.Time
	for len(out) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
