package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jpmedinagl/doctors-office/internal/office"
)

func writeRecords(w io.Writer, records []office.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no appointments")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tROOM\tDOCTOR\tPATIENT")
	for _, r := range records {
		patient := r.Patient
		if patient == "" {
			patient = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Date, r.Time, r.Room, r.Doctor, patient)
	}
	return tw.Flush()
}
