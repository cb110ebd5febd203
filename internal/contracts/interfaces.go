package contracts

import "context"

// Storage is the blob storage collaborator consumed by the pipeline. The
// concrete client (Supabase Storage over HTTP, or a local directory tree)
// lives in internal/storage. Implementations return *SubjectNotFoundError
// for absent objects and *StorageIOError for transport failures.
type Storage interface {
	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)
	// DownloadText returns the object body. Absent objects are an error.
	DownloadText(ctx context.Context, path string) (string, error)
	// UploadText writes the object body, overwriting any existing object.
	UploadText(ctx context.Context, path, content, contentType string) error
	// ListPaths returns all object paths under the given prefix.
	ListPaths(ctx context.Context, prefix string) ([]string, error)
}

// RunLog is the external run-log collaborator. BeginRun failure is the only
// fatal condition; the pipeline never branches on the outcome of the other
// calls (errors are logged and dropped by the caller).
type RunLog interface {
	// BeginRun opens a new run record for the given trigger source.
	BeginRun(ctx context.Context, source TriggerSource) error
	// UpdateProgress records progress (0-100) and the current operation.
	UpdateProgress(ctx context.Context, percentage float64, currentOperation string) error
	// MarkCompleted closes the run record with final counters.
	MarkCompleted(ctx context.Context, counters RunCounters) error
	// MarkFailed closes the run record with a failure reason.
	MarkFailed(ctx context.Context, reason string) error
}
