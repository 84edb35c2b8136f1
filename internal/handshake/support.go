package handshake

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/nlkli/fyspoti/internal/keyexchange"
)

// extractChallenge pulls gs and gs_signature out of the nested union
// structure an APResponseMessage carries (spec.md §4.4). A response
// missing any of these levels is a protocol violation from the server,
// reported the same way a malformed payload would be.
func extractChallenge(msg *keyexchange.APResponseMessage) (gs, gsSignature []byte, err error) {
	if msg.Challenge == nil ||
		msg.Challenge.LoginCryptoChallenge == nil ||
		msg.Challenge.LoginCryptoChallenge.DiffieHellman == nil {
		return nil, nil, wrapErr(KindProtobufParse, "extract_challenge",
			errors.New("response missing login_crypto_challenge.diffie_hellman"))
	}
	dh := msg.Challenge.LoginCryptoChallenge.DiffieHellman
	if len(dh.Gs) == 0 || len(dh.GsSignature) == 0 {
		return nil, nil, wrapErr(KindProtobufParse, "extract_challenge",
			errors.New("response has empty gs or gs_signature"))
	}
	return dh.Gs, dh.GsSignature, nil
}

func cryptoRandReader() io.Reader { return rand.Reader }

// readWriteCloser adapts a plain io.ReadWriter (such as the net.Pipe()
// halves used in tests) to io.ReadWriteCloser so the established
// transport.Conn always has a Close to call; real callers pass a
// net.Conn, which already satisfies the interface and passes through
// unchanged.
type readWriteCloser struct {
	io.ReadWriter
}

func (readWriteCloser) Close() error { return nil }

func asReadWriteCloser(conn io.ReadWriter) io.ReadWriteCloser {
	if rwc, ok := conn.(io.ReadWriteCloser); ok {
		return rwc
	}
	return readWriteCloser{conn}
}
