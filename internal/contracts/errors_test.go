package contracts

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "data format",
			err:  &DataFormatError{Subject: "BBCA", Reason: "missing close column"},
			want: KindDataFormat,
		},
		{
			name: "insufficient data",
			err:  &InsufficientDataError{Subject: "TLKM", Got: 9, Min: 10},
			want: KindInsufficientData,
		},
		{
			name: "subject not found",
			err:  &SubjectNotFoundError{Subject: "COMPOSITE", Path: "datasets/COMPOSITE.csv"},
			want: KindSubjectNotFound,
		},
		{
			name: "storage io",
			err:  &StorageIOError{Op: "download", Path: "datasets/BBRI.csv", Err: errors.New("connection reset")},
			want: KindStorageIO,
		},
		{
			name: "in progress",
			err:  &GenerationInProgressError{Active: TriggerScheduled, Requested: TriggerManual},
			want: KindInProgress,
		},
		{
			name: "wrapped storage io",
			err:  fmt.Errorf("process subject: %w", &StorageIOError{Op: "upload", Path: "rrg/stock/BBCA.csv", Err: errors.New("timeout")}),
			want: KindStorageIO,
		},
		{
			name: "unknown",
			err:  errors.New("something else"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStorageIOError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &StorageIOError{Op: "download", Path: "datasets/BBCA.csv", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected StorageIOError to unwrap to inner error")
	}
}
