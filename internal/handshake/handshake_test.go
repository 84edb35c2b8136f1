package handshake

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // matching the protocol's mandated hash
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/nlkli/fyspoti/internal/dhgroup"
	"github.com/nlkli/fyspoti/internal/keyexchange"
	"github.com/stretchr/testify/require"
)

// installTestServerKey swaps in a throwaway keypair so tests can produce
// signatures the handshake will actually accept, without touching the
// real pinned production key in verify.go.
func installTestServerKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	original := serverPublicKey
	serverPublicKey = &priv.PublicKey
	t.Cleanup(func() { serverPublicKey = original })
	return priv
}

// fakeServer reads one ClientHello envelope off conn, computes the DH
// shared secret against its own ephemeral keypair, signs gs with priv,
// and writes back a matching APResponseMessage envelope. It returns the
// shared secret and the bytes it read and wrote (the pre-encryption
// transcript) so the test can independently derive the expected keys.
func fakeServer(t *testing.T, conn net.Conn, priv *rsa.PrivateKey) (secret, transcript []byte) {
	t.Helper()

	versionPrefix := make([]byte, 2)
	_, err := io.ReadFull(conn, versionPrefix)
	require.NoError(t, err)

	lenBuf := make([]byte, 4)
	_, err = io.ReadFull(conn, lenBuf)
	require.NoError(t, err)
	total := binary.BigEndian.Uint32(lenBuf)
	payload := make([]byte, total-6)
	_, err = io.ReadFull(conn, payload)
	require.NoError(t, err)

	hello := &keyexchange.ClientHello{}
	require.NoError(t, hello.Unmarshal(payload))

	serverKP, err := dhgroup.GenerateRandom()
	require.NoError(t, err)

	digest := sha1.Sum(serverKP.PublicKey())
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA1, digest[:])
	require.NoError(t, err)

	resp := &keyexchange.APResponseMessage{
		Challenge: &keyexchange.APChallenge{
			LoginCryptoChallenge: &keyexchange.LoginCryptoChallenge{
				DiffieHellman: &keyexchange.DiffieHellmanChallenge{
					Gs:          serverKP.PublicKey(),
					GsSignature: sig,
				},
			},
		},
	}
	respBytes := resp.Marshal()
	envBuf := make([]byte, 4+len(respBytes))
	binary.BigEndian.PutUint32(envBuf[:4], uint32(4+len(respBytes)))
	copy(envBuf[4:], respBytes)
	_, err = conn.Write(envBuf)
	require.NoError(t, err)

	transcript = append(transcript, versionPrefix...)
	transcript = append(transcript, lenBuf...)
	transcript = append(transcript, payload...)
	transcript = append(transcript, envBuf...)

	secret, err = serverKP.SharedSecret(hello.LoginCryptoHello.DiffieHellman.Gc)
	require.NoError(t, err)
	return secret, transcript
}

func TestHandshakeEstablishesMatchingKeys(t *testing.T) {
	priv := installTestServerKey(t)
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type serverView struct{ secret, transcript []byte }
	serverDone := make(chan serverView, 1)
	go func() {
		secret, transcript := fakeServer(t, serverConn, priv)
		// Drain the ClientResponsePlaintext envelope: net.Pipe is
		// unbuffered, so the client's final write blocks until it is read.
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(serverConn, lenBuf); err == nil {
			io.CopyN(io.Discard, serverConn, int64(binary.BigEndian.Uint32(lenBuf))-4)
		}
		serverDone <- serverView{secret: secret, transcript: transcript}
	}()

	zeroDH := bytes.Repeat([]byte{0}, 95)
	zeroNonce := bytes.Repeat([]byte{0}, nonceLen)
	opts := Options{
		DHRand:    bytes.NewReader(zeroDH),
		NonceRand: bytes.NewReader(zeroNonce),
	}

	k, tconn, err := handshake(clientConn, opts)
	require.NoError(t, err)
	require.NotNil(t, tconn)
	require.Len(t, k.challenge, challengeLen)
	require.Len(t, k.sendKey, sendKeyLen)
	require.Len(t, k.recvKey, recvKeyLen)

	select {
	case sv := <-serverDone:
		want := deriveKeys(sv.secret, sv.transcript)
		require.Equal(t, want.challenge, k.challenge)
		require.Equal(t, want.sendKey, k.sendKey)
		require.Equal(t, want.recvKey, k.recvKey)
	case <-time.After(time.Second):
		t.Fatal("fake server did not finish")
	}
}

func TestHandshakeRejectsBadSignature(t *testing.T) {
	installTestServerKey(t) // installs one key...
	otherPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go fakeServer(t, serverConn, otherPriv) // ...but server signs with a different one

	_, _, err = handshake(clientConn, Options{})
	require.Error(t, err)
	require.True(t, IsVerificationFailure(err))
}

func TestHandshakeRejectsOversizeResponseLength(t *testing.T) {
	installTestServerKey(t)
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		// Drain the ClientHello so the client's write doesn't block.
		io.Copy(io.Discard, io.LimitReader(serverConn, 4096))
	}()

	done := make(chan error, 1)
	go func() {
		_, _, err := handshake(clientConn, Options{})
		done <- err
	}()

	// Give the client a moment to finish writing before we stop draining
	// and instead reply with a bad length.
	time.Sleep(50 * time.Millisecond)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, maxResponseSize+1)
	serverConn.Write(lenBuf)

	select {
	case err := <-done:
		require.Error(t, err)
		var he *Error
		require.ErrorAs(t, err, &he)
		require.Equal(t, KindFraming, he.Kind)
	case <-time.After(time.Second):
		t.Fatal("handshake did not return")
	}
}

func TestHandshakeRejectsUndersizeResponseLength(t *testing.T) {
	installTestServerKey(t)
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		io.Copy(io.Discard, io.LimitReader(serverConn, 4096))
	}()

	done := make(chan error, 1)
	go func() {
		_, _, err := handshake(clientConn, Options{})
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, 1)
	serverConn.Write(lenBuf)

	select {
	case err := <-done:
		require.Error(t, err)
		var he *Error
		require.ErrorAs(t, err, &he)
		require.Equal(t, KindFraming, he.Kind)
	case <-time.After(time.Second):
		t.Fatal("handshake did not return")
	}
}

func TestHandshakeSurfacesIOErrorOnClosedConn(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	serverConn.Close()
	clientConn.Close()

	_, _, err := handshake(clientConn, Options{})
	require.Error(t, err)
	var he *Error
	require.ErrorAs(t, err, &he)
	require.Equal(t, KindIO, he.Kind)
}
