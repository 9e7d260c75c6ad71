// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/deploygridgo/internal/results"
)

// writeReport prints one line per unit in deployment order, followed by the
// module outputs.
func writeReport(w io.Writer, r *results.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "MODULE %s\tRUN %s\n", r.Module, r.RunID)
	fmt.Fprintln(tw, "UNIT\tSTATUS\tHANDLE\tDETAIL")
	for _, name := range r.Order {
		u := r.Units[name]
		handle := string(u.Handle)
		if handle == "" {
			handle = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Status, handle, detail(u))
	}

	if len(r.Outputs) > 0 {
		names := make([]string, 0, len(r.Outputs))
		for name := range r.Outputs {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "OUTPUT\tHANDLE")
		for _, name := range names {
			h, ok := r.Output(name)
			if !ok {
				h = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, h)
		}
	}
	return tw.Flush()
}

func detail(u *results.UnitResult) string {
	switch u.Status {
	case results.Succeeded:
		if u.Reused {
			return "reused from state"
		}
		return u.Duration().Round(time.Millisecond).String()
	case results.Skipped:
		var skipErr *results.SkippedError
		if errors.As(u.Err, &skipErr) && skipErr.Dependency != "" {
			return "dependency " + skipErr.Dependency + " did not succeed"
		}
	}
	if u.Err != nil {
		return u.Err.Error()
	}
	return ""
}
