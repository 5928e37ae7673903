package design

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// Headers returns the table header: Run, X1..Xn.
func Headers(numFactors int) []string {
	h := make([]string, 0, numFactors+1)
	h = append(h, "Run")
	for i := 1; i <= numFactors; i++ {
		h = append(h, "X"+strconv.Itoa(i))
	}
	return h
}

func record(r Run) []string {
	rec := make([]string, 0, len(r.Levels)+1)
	rec = append(rec, strconv.Itoa(r.Index))
	for _, l := range r.Levels {
		rec = append(rec, strconv.Itoa(l))
	}
	return rec
}

func width(runs []Run) int {
	if len(runs) == 0 {
		return 0
	}
	return len(runs[0].Levels)
}

// WriteText renders the design as a right-aligned plain text table.
func WriteText(w io.Writer, runs []Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	writeRow := func(cells []string) error {
		for _, c := range cells {
			if _, err := fmt.Fprint(tw, c, "\t"); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(tw)
		return err
	}

	if err := writeRow(Headers(width(runs))); err != nil {
		return err
	}
	for _, r := range runs {
		if err := writeRow(record(r)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteCSV renders the design as CSV with a Run,X1..Xn header.
func WriteCSV(w io.Writer, runs []Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(width(runs))); err != nil {
		return err
	}
	for _, r := range runs {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
