// Package handshake implements the access-point handshake core: DH key
// exchange, RSA-signed server challenge verification, HMAC-SHA1 key
// derivation, and handoff to the framed transport (spec.md §1-9).
//
// The package is deliberately silent and collaborator-free beyond the
// stream it is handed: no logging, no metrics, no endpoint resolution, no
// retry policy. Those live one layer up (internal/resolver,
// internal/metrics, cmd/apclient) exactly as spec.md §1 scopes them out.
package handshake

import (
	"io"

	"github.com/google/uuid"

	"github.com/nlkli/fyspoti/internal/dhgroup"
	"github.com/nlkli/fyspoti/internal/transport"
)

// State names one node of the handshake state machine (spec.md §4.8).
// Its constants are unexported and no function returns a State; a failed
// attempt is labeled by the Step field of the returned *Error instead.
type State int

const (
	stateInit State = iota
	stateAwaitingResponse
	stateVerifying
	stateKeying
	stateResponding
	stateEstablished
	stateFailed
)

func (s State) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateAwaitingResponse:
		return "awaiting_response"
	case stateVerifying:
		return "verifying"
	case stateKeying:
		return "keying"
	case stateResponding:
		return "responding"
	case stateEstablished:
		return "established"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures randomness sources for a single handshake attempt.
// A nil reader falls back to crypto/rand, so the zero value is the
// production configuration. Tests substitute deterministic readers to
// reproduce spec.md §8 scenario S1.
type Options struct {
	// DHRand supplies the 95 bytes consumed as the local DH private
	// exponent (spec.md §4.1).
	DHRand io.Reader
	// NonceRand supplies the 16-byte client_nonce, drawn independently
	// of the DH randomness (spec.md §4.2).
	NonceRand io.Reader
}

// Result is the outcome of a successful Handshake call.
type Result struct {
	// Conn is the established framed transport.
	Conn *transport.Conn
	// AttemptID correlates this attempt across logs and metrics. It is
	// generated fresh per call, never derived from or folded into the
	// wire transcript, and has no cryptographic role.
	AttemptID uuid.UUID
}

// Handshake runs the full client-side handshake over conn and, on
// success, returns the established framed transport (spec.md §4.8). Any
// error is terminal: the core never retries internally (spec.md §5, §7).
//
// conn is not closed by Handshake, win or lose; the caller owns its
// lifecycle and decides whether to retry against a different access
// point. Handshake performs exactly five suspension points (spec.md §5)
// and installs no timers of its own — wrap conn with a deadline, or
// cancel by closing it, to bound how long a single attempt can run.
func Handshake(conn io.ReadWriter, opts Options) (*Result, error) {
	attemptID := uuid.New()
	_, tconn, err := handshake(conn, opts)
	if err != nil {
		if he, ok := err.(*Error); ok {
			he.AttemptID = attemptID
		}
		return nil, err
	}
	return &Result{Conn: tconn, AttemptID: attemptID}, nil
}

// handshake is the white-box entry point used by tests that need the
// derived keys themselves (spec.md §8 invariants 1, 2, 6 and scenario S1).
func handshake(conn io.ReadWriter, opts Options) (*keys, *transport.Conn, error) {
	dhRand := opts.DHRand
	if dhRand == nil {
		dhRand = cryptoRandReader()
	}
	nonceRand := opts.NonceRand
	if nonceRand == nil {
		nonceRand = cryptoRandReader()
	}

	// State: Init -> AwaitingResponse.
	local, err := dhgroup.Generate(dhRand)
	if err != nil {
		return nil, nil, wrapErr(KindRNG, "generate_dh_keypair", err)
	}

	clientNonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(nonceRand, clientNonce); err != nil {
		return nil, nil, wrapErr(KindRNG, "generate_client_nonce", err)
	}

	tr := newTranscript()
	if err := sendClientHello(conn, tr, local.PublicKey(), clientNonce); err != nil {
		return nil, nil, err
	}

	// State: AwaitingResponse -> Verifying.
	response, err := readAPResponse(conn, tr)
	if err != nil {
		return nil, nil, err
	}

	remoteGs, remoteSig, err := extractChallenge(response)
	if err != nil {
		return nil, nil, err
	}

	// State: Verifying -> Keying, or terminal Failed(VerificationFailed).
	if err := verifyServerChallenge(remoteGs, remoteSig); err != nil {
		return nil, nil, err
	}

	sharedSecret, err := local.SharedSecret(remoteGs)
	if err != nil {
		return nil, nil, wrapErr(KindIO, "compute_shared_secret", err)
	}

	// State: Keying -> Responding.
	k := deriveKeys(sharedSecret, tr.bytes())

	// State: Responding -> terminal Established.
	if err := sendClientResponse(conn, k.challenge); err != nil {
		return nil, nil, err
	}

	return k, transport.New(asReadWriteCloser(conn), k.sendKey, k.recvKey), nil
}
