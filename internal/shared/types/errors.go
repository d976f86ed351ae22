package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoUsageSource  = errors.New("no usage input given. Provide --usage-file, --accuse-file or a config file")
	ErrNoUsageRecords = errors.New("no usage records found in the selected date range")
	ErrZeroAllocation = errors.New("allocated SBU total is zero, cannot compute usage percentage")
)

// ParseError describes a malformed usage, accuse or input-deck file.
// Line is 1-based; zero means the error is not tied to a single line.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}
