// Package dhgroup implements the fixed 768-bit MODP Diffie-Hellman group
// used to negotiate the access-point session secret. Unlike rlpx's ECIES
// handshake (ephemeral secp256k1 keys per connection), this protocol
// exchanges values over a single well-known finite-field group: the prime,
// generator and server RSA modulus are process-wide immutables, never
// configuration.
package dhgroup

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

// privateKeyLen is the number of random bytes drawn for the local DH
// private exponent (95 bytes, little-endian, per spec).
const privateKeyLen = 95

// prime is the 768-bit MODP prime (generator 2) used by the AP wire
// protocol. It is compiled in; rotating it is a deliberate code change.
var prime = mustBigIntFromHex(
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC7" +
		"4020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14" +
		"374FE1356D6D51C245E485B576625E7EC6F44C42E9A63A3620FFFFFFFFFFFFFFFF",
)

var generator = big.NewInt(2)

func mustBigIntFromHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("dhgroup: invalid prime literal")
	}
	return n
}

// Keypair is a local Diffie-Hellman keypair, valid for a single handshake
// attempt. Its zero value is not usable; construct with Generate.
type Keypair struct {
	private *big.Int
	public  []byte
}

// Generate draws a fresh keypair from rng, interpreting 95 random bytes as
// a little-endian private exponent and computing the corresponding public
// value generator^private mod prime.
func Generate(rng io.Reader) (*Keypair, error) {
	buf := make([]byte, privateKeyLen)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	private := new(big.Int).SetBytes(reverse(buf))
	public := new(big.Int).Exp(generator, private, prime)
	return &Keypair{private: private, public: public.Bytes()}, nil
}

// GenerateRandom is a convenience wrapper around Generate using
// crypto/rand.Reader, the process-wide cryptographic RNG.
func GenerateRandom() (*Keypair, error) {
	return Generate(rand.Reader)
}

// PublicKey returns the local public value gc, big-endian, unpadded.
func (k *Keypair) PublicKey() []byte {
	return k.public
}

// SharedSecret computes remoteGs^private mod prime for the server's public
// value remoteGs (big-endian bytes), returning the big-endian result. The
// result is not padded to a fixed width; it is used directly as an HMAC
// key, which tolerates arbitrary key lengths.
func (k *Keypair) SharedSecret(remoteGs []byte) ([]byte, error) {
	if len(remoteGs) == 0 {
		return nil, errors.New("dhgroup: empty remote public value")
	}
	gs := new(big.Int).SetBytes(remoteGs)
	secret := new(big.Int).Exp(gs, k.private, prime)
	return secret.Bytes(), nil
}

// reverse returns a new slice with b's bytes in reverse order, used to
// flip the little-endian private key bytes into the big-endian form
// math/big expects.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
