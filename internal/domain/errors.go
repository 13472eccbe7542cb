package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrProviderNotFound = fmt.Errorf("llm provider not found")
	ErrAgentNotFound    = fmt.Errorf("agent not found")
	ErrVersionNotFound  = fmt.Errorf("prompt version not found")
	ErrSessionClosed    = fmt.Errorf("session closed")
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrDuplicate        = fmt.Errorf("duplicate")

	// Provider transport errors.
	ErrRateLimit     = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid   = fmt.Errorf("authentication failed")
	ErrProviderError = fmt.Errorf("provider error")

	// Transcription collaborator errors.
	ErrTranscriberDown = fmt.Errorf("transcription stream unavailable")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g. "Registry.SetActive")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsQuotaExhausted reports whether err indicates upstream rate
// limiting or quota exhaustion. These are logged with a distinguishing
// marker so operators know to raise the routing interval.
func IsQuotaExhausted(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	CodeAgentNotFound    ErrorCode = "AGENT_NOT_FOUND"
	CodeVersionNotFound  ErrorCode = "VERSION_NOT_FOUND"
	CodeSessionClosed    ErrorCode = "SESSION_CLOSED"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeDuplicate        ErrorCode = "DUPLICATE"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	CodeProviderError    ErrorCode = "PROVIDER_ERROR"
	CodeTranscriberDown  ErrorCode = "TRANSCRIBER_DOWN"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrProviderNotFound: CodeProviderNotFound,
	ErrAgentNotFound:    CodeAgentNotFound,
	ErrVersionNotFound:  CodeVersionNotFound,
	ErrSessionClosed:    CodeSessionClosed,
	ErrInvalidInput:     CodeInvalidInput,
	ErrDuplicate:        CodeDuplicate,
	ErrRateLimit:        CodeRateLimit,
	ErrAuthInvalid:      CodeAuthInvalid,
	ErrProviderError:    CodeProviderError,
	ErrTranscriberDown:  CodeTranscriberDown,
}

// ErrorCodeOf returns the machine-parseable error code for the given
// error. It unwraps DomainError and uses errors.Is to match sentinels.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}
