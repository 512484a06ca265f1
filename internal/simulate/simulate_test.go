package simulate

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/jpmedinagl/doctors-office/internal/office"
	"github.com/jpmedinagl/doctors-office/internal/seed"
)

func TestConfigNormalized(t *testing.T) {
	cfg := Config{BookingRatio: 2, PatientCancelRatio: 1, DoctorCancelRatio: 1}.normalized()

	if math.Abs(cfg.BookingRatio-0.5) > 1e-9 || math.Abs(cfg.DoctorCancelRatio-0.25) > 1e-9 {
		t.Fatalf("unexpected ratios: %+v", cfg)
	}
}

func TestOperationMetricsRecord(t *testing.T) {
	var om OperationMetrics
	om.Record(nil)
	om.Record(office.ErrNoOpenSlot)
	om.Record(fmt.Errorf("book: %w", office.ErrAlreadyBooked))
	om.Record(errors.New("boom"))

	if om.Total != 4 || om.Success != 1 || om.Rejected != 2 || om.Error != 1 {
		t.Fatalf("unexpected metrics: %+v", om)
	}
}

func TestRunKeepsScheduleConsistent(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := seed.New(3, logger)
	o := office.New("sim", office.WithLogger(logger))
	doctors := s.Doctors(5)
	patients := s.Patients(15, doctors)
	start := time.Date(2023, time.January, 30, 0, 0, 0, 0, time.UTC)

	times, err := s.Populate(o, doctors, patients, start, 3)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	sim := New(DefaultConfig(300), o, s, doctors, times, logger)
	sim.Run()

	m := sim.Metrics()
	total := m.Booking.Total + m.PatientCancel.Total + m.DoctorCancel.Total
	if total == 0 || total > 300 {
		t.Fatalf("unexpected operation count %d", total)
	}
	for name, om := range map[string]OperationMetrics{
		"booking":        m.Booking,
		"patient cancel": m.PatientCancel,
		"doctor cancel":  m.DoctorCancel,
	} {
		if om.Error != 0 {
			t.Fatalf("%s: unexpected errors %+v", name, om)
		}
	}
	if m.Booking.Success == 0 {
		t.Fatal("expected some bookings to succeed")
	}

	for _, at := range times {
		rooms := map[string]bool{}
		for _, r := range o.AppointmentsAt(at) {
			if rooms[r.Room] {
				t.Fatalf("room %s listed twice at %s", r.Room, at)
			}
			rooms[r.Room] = true
		}
	}
	for _, p := range o.Patients() {
		seen := map[time.Time]bool{}
		for _, at := range o.BookedTimes(p.ID()) {
			if seen[at] {
				t.Fatalf("patient %d booked twice at %s", p.ID(), at)
			}
			seen[at] = true
		}
	}

	var buf bytes.Buffer
	sim.PrintReport(&buf)
	if !strings.Contains(buf.String(), "SIMULATION REPORT") || !strings.Contains(buf.String(), "Office: sim") {
		t.Fatalf("unexpected report:\n%s", buf.String())
	}
}

func TestRunWithoutTimes(t *testing.T) {
	sim := New(DefaultConfig(10), office.New("empty"), seed.New(1, nil), nil, nil, nil)
	sim.Run()

	if m := sim.Metrics(); m.Booking.Total != 0 {
		t.Fatalf("expected no operations, got %+v", m)
	}
}
