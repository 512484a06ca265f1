package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/jpmedinagl/doctors-office/internal/office"
)

func TestRunDemo(t *testing.T) {
	o := office.New("demo")
	if err := runDemo(o, time.UTC, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []office.Record{
		office.NewRecord("Friday, 2023-02-03", "12:00", "A11", "Sara", ""),
		office.NewRecord("Friday, 2023-02-03", "12:00", "B20", "Nick (2)", "Leo"),
		office.NewRecord("Friday, 2023-02-03", "13:00", "A11", "Sara", "Jp"),
		office.NewRecord("Monday, 2023-02-06", "09:00", "B20", "Nick (2)", ""),
	}
	if got := o.ToScheduleList(time.Time{}); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	week := o.ToScheduleList(time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC))
	if len(week) != 3 {
		t.Fatalf("expected 3 records in the first week, got %d", len(week))
	}

	ana, _ := o.Patient(5)
	if ana.Cancellations() != 1 {
		t.Fatalf("expected Ana to have 1 cancellation, got %d", ana.Cancellations())
	}
}

func TestWriteRecords(t *testing.T) {
	records := []office.Record{
		office.NewRecord("Friday, 2023-02-03", "12:00", "A10", "Nick", "Jp"),
		office.NewRecord("Friday, 2023-02-03", "12:00", "A11", "Sara", ""),
	}

	var table bytes.Buffer
	if err := writeRecords(&table, records, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "DATE") || !strings.HasSuffix(lines[2], "-") {
		t.Fatalf("unexpected table:\n%s", table.String())
	}

	var raw bytes.Buffer
	if err := writeRecords(&raw, records, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []map[string]string
	if err := json.Unmarshal(raw.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded[0]["Doctor"] != "Nick" || decoded[1]["Patient"] != "" {
		t.Fatalf("unexpected json: %v", decoded)
	}

	var empty bytes.Buffer
	if err := writeRecords(&empty, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(empty.String()) != "no appointments" {
		t.Fatalf("unexpected output for empty list: %q", empty.String())
	}
}

func TestSimulateRejectsNegativeOperations(t *testing.T) {
	a := &app{logger: zaptest.NewLogger(t)}
	cmd := simulateCmd(a)
	cmd.SetArgs([]string{"--operations", "-1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--operations") {
		t.Fatalf("expected --operations error, got %v", err)
	}
}
