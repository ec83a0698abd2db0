package workbook

import (
	"errors"
	"fmt"
)

var (
	ErrNoSheet          = errors.New("workbook contains no sheets")
	ErrSheetNotReadable = errors.New("failed to read sheet")
	ErrWorkbookOpen     = errors.New("failed to open bytes as a workbook")
)

func ErrorSheetNotReadable(sheet string, cause error) error {
	return fmt.Errorf("%w: sheet=%s cause=%v", ErrSheetNotReadable, sheet, cause)
}

func ErrorWorkbookOpen(cause error) error {
	return fmt.Errorf("%w: cause=%v", ErrWorkbookOpen, cause)
}

// IsParseFailure reports whether err means the workbook as a whole could not
// be processed, which routes the message to the failure-notification branch.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrWorkbookOpen) ||
		errors.Is(err, ErrNoSheet) ||
		errors.Is(err, ErrSheetNotReadable)
}
