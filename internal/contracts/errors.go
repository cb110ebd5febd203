package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy for the generation pipeline. Per-subject errors are caught
// at the task boundary, classified with Classify, counted and logged; they
// never abort a wave or the run.

// DataFormatError reports malformed tabular input: missing date/close
// columns or an empty file.
type DataFormatError struct {
	Subject string
	Reason  string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("data format error for %s: %s", e.Subject, e.Reason)
}

// InsufficientDataError reports a series below a minimum point threshold,
// at instrument, sector or indicator-sequence level.
type InsufficientDataError struct {
	Subject string
	Got     int
	Min     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %d points, need %d", e.Subject, e.Got, e.Min)
}

// SubjectNotFoundError reports expected input that is absent: an unmapped
// sector, a missing benchmark file, or a storage object that does not exist.
type SubjectNotFoundError struct {
	Subject string
	Path    string
}

func (e *SubjectNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("subject %s not found at %s", e.Subject, e.Path)
	}
	return fmt.Sprintf("subject %s not found", e.Subject)
}

// StorageIOError reports a transient storage read/write failure. The
// pipeline performs no automatic retry.
type StorageIOError struct {
	Op   string // exists, download, upload, list
	Path string
	Err  error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}

// GenerationInProgressError reports a trigger rejected by the
// single-active-run guard. It is logged as a warning, never counted as a
// run failure.
type GenerationInProgressError struct {
	Active    TriggerSource
	Requested TriggerSource
}

func (e *GenerationInProgressError) Error() string {
	return fmt.Sprintf("generation already in progress (active source %s, rejected %s)", e.Active, e.Requested)
}

// Error kinds as reported in summaries and logs
const (
	KindDataFormat       = "data_format"
	KindInsufficientData = "insufficient_data"
	KindSubjectNotFound  = "subject_not_found"
	KindStorageIO        = "storage_io"
	KindInProgress       = "generation_in_progress"
	KindUnknown          = "unknown"
)

// Classify maps an error to its taxonomy kind
func Classify(err error) string {
	var (
		dfe *DataFormatError
		ide *InsufficientDataError
		snf *SubjectNotFoundError
		sio *StorageIOError
		gip *GenerationInProgressError
	)
	switch {
	case errors.As(err, &dfe):
		return KindDataFormat
	case errors.As(err, &ide):
		return KindInsufficientData
	case errors.As(err, &snf):
		return KindSubjectNotFound
	case errors.As(err, &sio):
		return KindStorageIO
	case errors.As(err, &gip):
		return KindInProgress
	default:
		return KindUnknown
	}
}
