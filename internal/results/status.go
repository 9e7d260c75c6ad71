// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package results

// Status is the lifecycle state of a unit within a run.
type Status int

const (
	Pending Status = iota
	Running
	Succeeded
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}
