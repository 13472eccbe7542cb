package transcribe

import (
	"context"
	"testing"
	"time"
)

func TestPassthroughFinalizesText(t *testing.T) {
	c := NewChannel(Passthrough{}, testLogger())
	ctx := context.Background()

	segments, err := c.Stream(ctx)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if err := c.WriteAudio(ctx, []byte("  we should revisit the roadmap  ")); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}

	select {
	case seg := <-segments:
		if seg.Text != "we should revisit the roadmap" || !seg.IsFinal {
			t.Errorf("segment = %+v", seg)
		}
	case <-time.After(time.Second):
		t.Fatal("no segment received")
	}
}

func TestPassthroughDropsInvalidChunks(t *testing.T) {
	c := NewChannel(Passthrough{}, testLogger())
	ctx := context.Background()

	segments, _ := c.Stream(ctx)
	c.WriteAudio(ctx, []byte{0xff, 0xfe, 0x01})
	c.WriteAudio(ctx, []byte("   "))
	c.WriteAudio(ctx, []byte("a real segment"))

	select {
	case seg := <-segments:
		if seg.Text != "a real segment" {
			t.Errorf("segment = %+v, want the valid chunk only", seg)
		}
	case <-time.After(time.Second):
		t.Fatal("no segment received")
	}
}
