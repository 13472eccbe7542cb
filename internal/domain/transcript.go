package domain

import "context"

// Transcriber is the boundary to the external speech-to-text
// collaborator. Audio goes in as opaque chunks; finalized (and interim)
// segments come back on the stream channel. The channel closes when the
// upstream stream ends or ctx is cancelled.
type Transcriber interface {
	// Stream starts (or attaches to) the recognition stream.
	Stream(ctx context.Context) (<-chan Segment, error)
	// WriteAudio forwards one chunk of raw audio upstream.
	WriteAudio(ctx context.Context, chunk []byte) error
	// Close tears down the upstream stream.
	Close() error
}

// TranscriberFactory creates one Transcriber per connected session.
type TranscriberFactory func(ctx context.Context) (Transcriber, error)
