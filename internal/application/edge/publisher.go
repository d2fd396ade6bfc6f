package edge

import (
	"context"
	"io"
)

// MessagePublisher sends one payload to the configured topic on the
// messaging transport.
type MessagePublisher interface {
	Publish(ctx context.Context, payload []byte) error
	io.Closer
}
