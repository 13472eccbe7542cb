package transcribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"meetingmind/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoRecognizer finalizes every audio chunk as its string form.
type echoRecognizer struct{}

func (echoRecognizer) Recognize(ctx context.Context, in <-chan []byte, out chan<- domain.Segment) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-in:
			if !ok {
				return nil
			}
			out <- domain.Segment{Text: string(chunk), IsFinal: true, At: time.Now()}
		}
	}
}

func TestChannelRoundTrip(t *testing.T) {
	c := NewChannel(echoRecognizer{}, testLogger())
	ctx := context.Background()

	segments, err := c.Stream(ctx)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if err := c.WriteAudio(ctx, []byte("hello from the meeting")); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}

	select {
	case seg := <-segments:
		if seg.Text != "hello from the meeting" || !seg.IsFinal {
			t.Errorf("segment = %+v", seg)
		}
	case <-time.After(time.Second):
		t.Fatal("no segment received")
	}
}

func TestChannelCloseStopsStream(t *testing.T) {
	c := NewChannel(echoRecognizer{}, testLogger())
	ctx := context.Background()

	segments, _ := c.Stream(ctx)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	select {
	case _, ok := <-segments:
		if ok {
			t.Error("unexpected segment after close")
		}
	case <-time.After(time.Second):
		t.Fatal("segment channel not closed")
	}

	err := c.WriteAudio(ctx, []byte("late"))
	if !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("WriteAudio after close: got %v, want ErrSessionClosed", err)
	}
}
