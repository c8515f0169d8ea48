package booking

import (
	"context"
	"io"
	"time"
)

// DocumentStorage stores uploaded proof files.
// Implemented by the infrastructure layer (S3, MinIO, in-memory).
type DocumentStorage interface {
	// Put writes the object under key, replacing any existing object, and
	// returns the URL recorded on the document
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// DownloadURL returns a short-lived URL for reading the object
	DownloadURL(ctx context.Context, key string) (string, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// Clock returns the current time. Services take it as an option so tests
// can pin "today" for overdue calculations.
type Clock func() time.Time

// Metrics records business counters for booking activity.
type Metrics interface {
	BookingCreated(ctx context.Context, bookingType string)
	InstallmentStatusChanged(ctx context.Context, status string)
	ProofUploaded(ctx context.Context, sizeBytes int64, replaced bool)
	UploadRejected(ctx context.Context, reason string)
}

type nopMetrics struct{}

func (nopMetrics) BookingCreated(context.Context, string)           {}
func (nopMetrics) InstallmentStatusChanged(context.Context, string) {}
func (nopMetrics) ProofUploaded(context.Context, int64, bool)       {}
func (nopMetrics) UploadRejected(context.Context, string)           {}
