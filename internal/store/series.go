// Package store keeps the per-feed block series that the API reads from.
package store

import (
	"sort"
	"sync"

	"feewatch/internal/model"
)

// Record is a per-block value that knows its block number and can compare
// its value with another record of the same block.
type Record[R any] interface {
	Block() uint64
	SameValue(other R) bool
}

// Policy decides what happens when a merged record's block is already present.
type Policy int

const (
	// Immutable keeps the existing record. A differing value is reported as
	// an inconsistency.
	Immutable Policy = iota
	// ReplaceOnChange overwrites the existing record when the value differs.
	ReplaceOnChange
)

// MergeResult counts what a Merge did. Conflicts lists the immutable blocks
// whose incoming value was refused.
type MergeResult struct {
	Added     int
	Replaced  int
	Unchanged int
	Conflicts []*model.InconsistencyError
}

// Series is an ordered, deduplicated sequence of records keyed by block number.
type Series[R Record[R]] struct {
	feed   model.Feed
	policy Policy

	mu      sync.RWMutex
	records []R
	index   map[uint64]int
}

// NewSeries returns an empty series for feed that resolves repeated blocks
// according to policy.
func NewSeries[R Record[R]](feed model.Feed, policy Policy) *Series[R] {
	return &Series[R]{
		feed:   feed,
		policy: policy,
		index:  make(map[uint64]int),
	}
}

// Feed names the feed that owns the series.
func (s *Series[R]) Feed() model.Feed {
	return s.feed
}

// Merge folds incoming records into the series. Merging the same batch twice
// leaves the series as after the first merge.
func (s *Series[R]) Merge(incoming []R) MergeResult {
	var res MergeResult

	s.mu.Lock()
	defer s.mu.Unlock()

	var appended []R
	pending := make(map[uint64]int)
	for _, rec := range incoming {
		if pos, ok := s.index[rec.Block()]; ok {
			s.mergeExisting(pos, rec, &res)
			continue
		}
		if pos, ok := pending[rec.Block()]; ok {
			s.mergePending(appended, pos, rec, &res)
			continue
		}
		pending[rec.Block()] = len(appended)
		appended = append(appended, rec)
		res.Added++
	}

	if len(appended) > 0 {
		s.insertSorted(appended)
	}
	return res
}

func (s *Series[R]) mergeExisting(pos int, rec R, res *MergeResult) {
	existing := s.records[pos]
	if existing.SameValue(rec) {
		res.Unchanged++
		return
	}
	if s.policy == ReplaceOnChange {
		s.records[pos] = rec
		res.Replaced++
		return
	}
	res.Conflicts = append(res.Conflicts, &model.InconsistencyError{
		Feed:     s.feed,
		Block:    rec.Block(),
		Existing: existing,
		Incoming: rec,
	})
}

// mergePending handles a block repeated within one batch: last one wins for
// replaceable feeds, first one wins and the rest are conflicts otherwise.
func (s *Series[R]) mergePending(appended []R, pos int, rec R, res *MergeResult) {
	first := appended[pos]
	if first.SameValue(rec) {
		return
	}
	if s.policy == ReplaceOnChange {
		appended[pos] = rec
		return
	}
	res.Conflicts = append(res.Conflicts, &model.InconsistencyError{
		Feed:     s.feed,
		Block:    rec.Block(),
		Existing: first,
		Incoming: rec,
	})
}

// insertSorted adds records whose blocks are not yet present and restores
// block order. New blocks are usually newer than everything stored, so the
// common case is a plain append.
func (s *Series[R]) insertSorted(added []R) {
	sort.Slice(added, func(i, j int) bool { return added[i].Block() < added[j].Block() })

	n := len(s.records)
	if n == 0 || s.records[n-1].Block() < added[0].Block() {
		s.records = append(s.records, added...)
		for i := n; i < len(s.records); i++ {
			s.index[s.records[i].Block()] = i
		}
		return
	}

	merged := make([]R, 0, n+len(added))
	i, j := 0, 0
	for i < n && j < len(added) {
		if s.records[i].Block() < added[j].Block() {
			merged = append(merged, s.records[i])
			i++
		} else {
			merged = append(merged, added[j])
			j++
		}
	}
	merged = append(merged, s.records[i:]...)
	merged = append(merged, added[j:]...)

	s.records = merged
	for k, rec := range s.records {
		s.index[rec.Block()] = k
	}
}

// Snapshot returns a copy of the series in increasing block order.
func (s *Series[R]) Snapshot() []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, len(s.records))
	copy(out, s.records)
	return out
}

// Since returns a copy of the records with block number >= from.
func (s *Series[R]) Since(from uint64) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := sort.Search(len(s.records), func(i int) bool { return s.records[i].Block() >= from })
	out := make([]R, len(s.records)-start)
	copy(out, s.records[start:])
	return out
}

// Len returns the number of records held.
func (s *Series[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Latest returns the record with the highest block number.
func (s *Series[R]) Latest() (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero R
	if len(s.records) == 0 {
		return zero, false
	}
	return s.records[len(s.records)-1], true
}
