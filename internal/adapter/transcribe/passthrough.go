package transcribe

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"meetingmind/internal/domain"
)

// Passthrough is a Recognizer for deployments that run speech-to-text
// in front of the gateway: every inbound chunk is already finalized
// transcript text. Non-UTF-8 and blank chunks are dropped.
type Passthrough struct{}

func (Passthrough) Recognize(ctx context.Context, in <-chan []byte, out chan<- domain.Segment) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-in:
			if !ok {
				return nil
			}
			if !utf8.Valid(chunk) {
				continue
			}
			text := strings.TrimSpace(string(chunk))
			if text == "" {
				continue
			}
			select {
			case out <- domain.Segment{Text: text, IsFinal: true, At: time.Now()}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
