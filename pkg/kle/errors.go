package kle

import "fmt"

// FormatError reports a structurally invalid compact document. Row and Item
// locate the offending element, or are -1 when the problem is document-wide.
type FormatError struct {
	Row  int
	Item int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	loc := ""
	switch {
	case e.Row >= 0 && e.Item >= 0:
		loc = fmt.Sprintf("row %d, item %d: ", e.Row, e.Item)
	case e.Row >= 0:
		loc = fmt.Sprintf("row %d: ", e.Row)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid layout: %s%s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid layout: %s%s", loc, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(row, item int, msg string) error {
	return &FormatError{Row: row, Item: item, Msg: msg}
}
