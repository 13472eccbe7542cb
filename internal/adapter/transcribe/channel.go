// Package transcribe holds the boundary to the external speech-to-text
// collaborator. The core never sees a recognizer API, only the
// domain.Transcriber contract.
package transcribe

import (
	"context"
	"log/slog"
	"sync"

	"meetingmind/internal/domain"
)

// audioQueueSize bounds buffered audio chunks before WriteAudio blocks.
const audioQueueSize = 64

// segmentQueueSize bounds recognized segments awaiting the session.
const segmentQueueSize = 16

// Recognizer converts audio chunks to transcript segments. Implemented
// by the concrete speech-to-text integration; the Channel adapter owns
// queuing and lifecycle around it.
type Recognizer interface {
	// Recognize consumes audio from in and emits segments on out until
	// in closes or ctx is cancelled. It must close out before returning.
	Recognize(ctx context.Context, in <-chan []byte, out chan<- domain.Segment) error
}

// Channel adapts a Recognizer to domain.Transcriber with buffered
// audio and segment queues. One Channel serves one session.
type Channel struct {
	recognizer Recognizer
	logger     *slog.Logger

	audio    chan []byte
	segments chan domain.Segment

	startOnce sync.Once
	closeOnce sync.Once
	closed    chan struct{}
}

// NewChannel creates a transcriber around the given recognizer.
func NewChannel(recognizer Recognizer, logger *slog.Logger) *Channel {
	return &Channel{
		recognizer: recognizer,
		logger:     logger,
		audio:      make(chan []byte, audioQueueSize),
		segments:   make(chan domain.Segment, segmentQueueSize),
		closed:     make(chan struct{}),
	}
}

// Stream implements domain.Transcriber. The recognition loop starts on
// first call; subsequent calls return the same channel.
func (c *Channel) Stream(ctx context.Context) (<-chan domain.Segment, error) {
	c.startOnce.Do(func() {
		go func() {
			if err := c.recognizer.Recognize(ctx, c.audio, c.segments); err != nil {
				c.logger.Error("recognition stream ended with error", "error", err)
			}
		}()
	})
	return c.segments, nil
}

// WriteAudio implements domain.Transcriber. Blocks when the audio
// queue is full, applying backpressure to the socket read loop.
func (c *Channel) WriteAudio(ctx context.Context, chunk []byte) error {
	select {
	case <-c.closed:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	case c.audio <- chunk:
		return nil
	}
}

// Close implements domain.Transcriber. Closing the audio channel lets
// the recognizer drain and close the segment channel.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		close(c.audio)
	})
	return nil
}

var _ domain.Transcriber = (*Channel)(nil)
