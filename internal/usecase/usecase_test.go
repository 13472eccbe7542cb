package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"meetingmind/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient is a scriptable domain.LLMClient.
type fakeClient struct {
	mu       sync.Mutex
	requests []domain.GenerateRequest
	generate func(req domain.GenerateRequest) (*domain.GenerateResponse, error)
}

func (f *fakeClient) Generate(_ context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.generate(req)
}

func (f *fakeClient) ActiveProvider() (provider, model string) { return "fake", "fake-model" }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeClient) lastRequest() domain.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return domain.GenerateRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func textClient(text string) *fakeClient {
	return &fakeClient{
		generate: func(domain.GenerateRequest) (*domain.GenerateResponse, error) {
			return &domain.GenerateResponse{Text: text, FinishReason: domain.FinishStop}, nil
		},
	}
}

// recorder collects broadcast messages.
type recorder struct {
	mu   sync.Mutex
	msgs []domain.InsightMessage
	err  error
}

func (r *recorder) broadcast(_ context.Context, msg domain.InsightMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) messages() []domain.InsightMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.InsightMessage, len(r.msgs))
	copy(out, r.msgs)
	return out
}
