package interfaces

import (
	"context"
	"time"
)

// SequenceRepository hands out per-day, per-kind ordinals for human-readable
// codes. Next must be safe under concurrent callers: two calls for the same
// kind and day never return the same ordinal.
type SequenceRepository interface {
	Next(ctx context.Context, kind string, day time.Time) (int64, error)
}
