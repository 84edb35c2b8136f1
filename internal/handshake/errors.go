package handshake

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a handshake failure so callers can distinguish "network
// problem, try another access point" from "cryptographic problem, abort
// entirely" (spec.md §7).
type Kind int

const (
	// KindIO covers any failed, closed, or timed-out network operation.
	KindIO Kind = iota
	// KindFraming covers an inconsistent length field: too small, too
	// large, or the stream ending before the declared length is met.
	KindFraming
	// KindProtobufParse covers a response payload that didn't decode.
	KindProtobufParse
	// KindVerificationFailed covers an RSA signature that didn't
	// validate against the pinned server key. Never retried.
	KindVerificationFailed
	// KindInvalidLength covers an HMAC construction rejecting a key
	// length; should never happen in practice (spec.md §7).
	KindInvalidLength
	// KindRNG covers a cryptographic RNG failure.
	KindRNG
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFraming:
		return "framing"
	case KindProtobufParse:
		return "protobuf_parse"
	case KindVerificationFailed:
		return "verification_failed"
	case KindInvalidLength:
		return "invalid_length"
	case KindRNG:
		return "rng"
	default:
		return "unknown"
	}
}

// Error is the error type surfaced by every handshake step. Step names the
// state-machine transition that raised it (spec.md §4.8), so a caller
// reading a log or a metrics label can tell which leg of the handshake
// failed without string-matching the message.
type Error struct {
	Kind Kind
	Step string
	Err  error
	// AttemptID is filled in by Handshake after the fact so a caller's
	// log line can be joined back to the attempt that raised it; it is
	// zero-valued on an *Error observed any other way (e.g. from the
	// unexported handshake() used directly by tests).
	AttemptID uuid.UUID
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("handshake: %s: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("handshake: %s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind Kind, step string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Step: step, Err: err}
}

// IsVerificationFailure reports whether err is (or wraps) a signature
// verification failure — the one kind that must never be retried blindly.
func IsVerificationFailure(err error) bool {
	var he *Error
	if !errors.As(err, &he) {
		return false
	}
	return he.Kind == KindVerificationFailed
}
