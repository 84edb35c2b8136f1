package keyexchange

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientHelloRoundTripLength(t *testing.T) {
	hello := &ClientHello{
		BuildInfo: &BuildInfo{
			Platform:     PlatformLinuxX86_64,
			Product:      ProductClient,
			ProductFlags: []ProductFlags{ProductFlagNone},
			Version:      124200290,
		},
		CryptosuitesSupported: []Cryptosuite{CryptosuiteShannon},
		LoginCryptoHello: &LoginCryptoHello{
			DiffieHellman: &DiffieHellmanHello{
				Gc:              bytes.Repeat([]byte{0x07}, 96),
				ServerKeysKnown: 1,
			},
		},
		ClientNonce: bytes.Repeat([]byte{0x00}, 16),
		Padding:     []byte{0x1e},
	}

	payload := hello.Marshal()
	require.NotEmpty(t, payload)

	// spec.md §8 invariant 7: envelope_length - 6 == payload length, once
	// this payload is framed by the hello builder (tested end-to-end in
	// internal/handshake).
	require.Greater(t, len(payload), 100)
}

func TestAPResponseMessageUnmarshal(t *testing.T) {
	gs := bytes.Repeat([]byte{0x11}, 96)
	sig := bytes.Repeat([]byte{0x22}, 256)

	dh := &DiffieHellmanChallenge{Gs: gs, GsSignature: sig}
	dhPayload := appendBytes(appendBytes(nil, fieldDHChallengeGs, dh.Gs), fieldDHChallengeGsSignature, dh.GsSignature)
	lcPayload := appendMessage(nil, fieldLoginCryptoChallengeDH, dhPayload)
	challengePayload := appendMessage(nil, fieldAPChallengeLoginCrypto, lcPayload)
	msgPayload := appendMessage(nil, fieldAPResponseChallenge, challengePayload)

	var msg APResponseMessage
	require.NoError(t, msg.Unmarshal(msgPayload))
	require.NotNil(t, msg.Challenge)
	require.NotNil(t, msg.Challenge.LoginCryptoChallenge)
	require.NotNil(t, msg.Challenge.LoginCryptoChallenge.DiffieHellman)
	require.Equal(t, gs, msg.Challenge.LoginCryptoChallenge.DiffieHellman.Gs)
	require.Equal(t, sig, msg.Challenge.LoginCryptoChallenge.DiffieHellman.GsSignature)
}

func TestAPResponseMessageUnmarshalIgnoresUnknownFields(t *testing.T) {
	// An unrecognized field (e.g. the "upgrade" union) must be skipped,
	// not fail parsing.
	unknown := appendBytes(nil, 20, []byte("future-feature"))
	var msg APResponseMessage
	require.NoError(t, msg.Unmarshal(unknown))
	require.Nil(t, msg.Challenge)
}

func TestClientHelloMarshalUnmarshalRoundTrip(t *testing.T) {
	hello := &ClientHello{
		BuildInfo: &BuildInfo{
			Platform:     PlatformLinuxX86_64,
			Product:      ProductClient,
			ProductFlags: []ProductFlags{ProductFlagNone},
			Version:      124200290,
		},
		CryptosuitesSupported: []Cryptosuite{CryptosuiteShannon},
		LoginCryptoHello: &LoginCryptoHello{
			DiffieHellman: &DiffieHellmanHello{
				Gc:              bytes.Repeat([]byte{0x07}, 96),
				ServerKeysKnown: 1,
			},
		},
		ClientNonce: bytes.Repeat([]byte{0x00}, 16),
		Padding:     []byte{0x1e},
	}

	var decoded ClientHello
	require.NoError(t, decoded.Unmarshal(hello.Marshal()))
	require.Equal(t, hello.BuildInfo.Platform, decoded.BuildInfo.Platform)
	require.Equal(t, hello.BuildInfo.Product, decoded.BuildInfo.Product)
	require.Equal(t, hello.BuildInfo.Version, decoded.BuildInfo.Version)
	require.Equal(t, hello.CryptosuitesSupported, decoded.CryptosuitesSupported)
	require.Equal(t, hello.LoginCryptoHello.DiffieHellman.Gc, decoded.LoginCryptoHello.DiffieHellman.Gc)
	require.Equal(t, hello.LoginCryptoHello.DiffieHellman.ServerKeysKnown, decoded.LoginCryptoHello.DiffieHellman.ServerKeysKnown)
	require.Equal(t, hello.ClientNonce, decoded.ClientNonce)
	require.Equal(t, hello.Padding, decoded.Padding)
}

func TestAPResponseMessageMarshalUnmarshalRoundTrip(t *testing.T) {
	msg := &APResponseMessage{
		Challenge: &APChallenge{
			LoginCryptoChallenge: &LoginCryptoChallenge{
				DiffieHellman: &DiffieHellmanChallenge{
					Gs:          bytes.Repeat([]byte{0x44}, 96),
					GsSignature: bytes.Repeat([]byte{0x55}, 256),
				},
			},
		},
	}

	var decoded APResponseMessage
	require.NoError(t, decoded.Unmarshal(msg.Marshal()))
	require.Equal(t, msg.Challenge.LoginCryptoChallenge.DiffieHellman.Gs, decoded.Challenge.LoginCryptoChallenge.DiffieHellman.Gs)
	require.Equal(t, msg.Challenge.LoginCryptoChallenge.DiffieHellman.GsSignature, decoded.Challenge.LoginCryptoChallenge.DiffieHellman.GsSignature)
}

func TestClientResponsePlaintextMarshal(t *testing.T) {
	resp := &ClientResponsePlaintext{
		LoginCryptoResponse: &LoginCryptoResponse{
			DiffieHellman: &DiffieHellmanResponse{Hmac: bytes.Repeat([]byte{0x33}, 20)},
		},
		PoWResponsePresent:    true,
		CryptoResponsePresent: true,
	}
	payload := resp.Marshal()
	require.NotEmpty(t, payload)
}
