package model

import (
	"fmt"
	"sort"
	"strings"
)

// TransportError means an RPC call failed, timed out or returned an error object.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means a single log entry or field could not be decoded.
type DecodeError struct {
	Block uint64
	Index uint64
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode log %d in block %d: %v", e.Index, e.Block, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InconsistencyError means a newly fetched value for an immutable block
// disagrees with the recorded one. The recorded value is kept.
type InconsistencyError struct {
	Feed     Feed
	Block    uint64
	Existing any
	Incoming any
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: block %d already recorded as %+v, refusing %+v", e.Feed, e.Block, e.Existing, e.Incoming)
}

// PartialBatchError is returned together with the records that did resolve
// when some blocks or entries of a batch failed.
type PartialBatchError struct {
	Failures map[uint64]error
}

func (e *PartialBatchError) Add(block uint64, err error) {
	if e.Failures == nil {
		e.Failures = make(map[uint64]error)
	}
	if prev, ok := e.Failures[block]; ok {
		err = fmt.Errorf("%v; %w", prev, err)
	}
	e.Failures[block] = err
}

func (e *PartialBatchError) Empty() bool {
	return e == nil || len(e.Failures) == 0
}

func (e *PartialBatchError) Error() string {
	blocks := make([]uint64, 0, len(e.Failures))
	for b := range e.Failures {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("block %d: %v", b, e.Failures[b]))
	}
	return fmt.Sprintf("%d failed: %s", len(blocks), strings.Join(parts, "; "))
}
