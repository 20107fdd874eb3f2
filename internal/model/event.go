package model

import "time"

const (
	CycleOK        CycleStatus = "ok"
	CyclePartial   CycleStatus = "partial"
	CycleFailed    CycleStatus = "failed"
	CycleSkipped   CycleStatus = "skipped"
	CycleDiscarded CycleStatus = "discarded"
)

type (
	CycleStatus string

	// CycleEvent describes the outcome of one fetch/merge cycle of a feed.
	CycleEvent struct {
		Feed         Feed
		CycleID      string
		Status       CycleStatus
		Started      time.Time
		Duration     time.Duration
		Records      int
		Added        int
		Replaced     int
		Conflicts    []*InconsistencyError
		SeriesLength int
		Err          error
	}
)
