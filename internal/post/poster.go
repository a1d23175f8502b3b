package post

import (
	"context"
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the platform answers 429. It is
// terminal for the current attempt cycle; the retrier never retries it.
var ErrRateLimited = errors.New("rate limited by platform")

// PostError is a non-rate-limit platform failure.
type PostError struct {
	StatusCode int
	Body       string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("platform error (status %d): %s", e.StatusCode, e.Body)
}

// Poster publishes a post with optional media attachments and returns
// the platform's post identifier.
type Poster interface {
	Post(ctx context.Context, text string, mediaIDs []string) (string, error)
}

// MediaUploader converts a local file into a platform media identifier.
type MediaUploader interface {
	Upload(ctx context.Context, path string) (string, error)
}
