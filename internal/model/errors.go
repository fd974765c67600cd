package model

import (
	"errors"
	"fmt"
)

var (
	// ErrLookupTableNotFound is returned when the lookup table file cannot be opened.
	ErrLookupTableNotFound = errors.New("lookup table not found")
	// ErrFlowLogNotFound is returned when the flow-log file cannot be opened.
	ErrFlowLogNotFound = errors.New("flow log not found")
)

// InputKind names which input file an error refers to.
type InputKind int

const (
	LookupTable InputKind = iota
	FlowLog
)

func (k InputKind) String() string {
	switch k {
	case LookupTable:
		return "lookup table"
	case FlowLog:
		return "flow log"
	default:
		return "input"
	}
}

// NotFoundError reports an input file that does not exist or cannot be opened.
type NotFoundError struct {
	Kind InputKind
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Error: The file %s was not found.", e.Path)
}

// Is matches the sentinel for the error's input kind.
func (e *NotFoundError) Is(target error) bool {
	switch e.Kind {
	case LookupTable:
		return target == ErrLookupTableNotFound
	case FlowLog:
		return target == ErrFlowLogNotFound
	}
	return false
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds a NotFoundError for the given input.
func NewNotFoundError(kind InputKind, path string, err error) error {
	return &NotFoundError{Kind: kind, Path: path, Err: err}
}
