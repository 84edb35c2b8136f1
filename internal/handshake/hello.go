package handshake

import (
	"encoding/binary"
	"io"

	"github.com/nlkli/fyspoti/internal/keyexchange"
)

// spotifyClientVersion is compiled in, not configuration (spec.md §9).
const spotifyClientVersion = 124200290

// helloPadding is the single trailing padding byte ClientHello always
// carries; its meaning (if any) beyond satisfying the server's parser is
// not documented upstream, so it is reproduced literally.
var helloPadding = []byte{0x1e}

// nonceLen is the length of the client nonce, drawn independently of the
// DH randomness (spec.md §4.2).
const nonceLen = 16

func buildClientHello(publicKey, clientNonce []byte) *keyexchange.ClientHello {
	return &keyexchange.ClientHello{
		BuildInfo: &keyexchange.BuildInfo{
			Platform:     keyexchange.PlatformLinuxX86_64,
			Product:      keyexchange.ProductClient,
			ProductFlags: []keyexchange.ProductFlags{keyexchange.ProductFlagNone},
			Version:      spotifyClientVersion,
		},
		CryptosuitesSupported: []keyexchange.Cryptosuite{keyexchange.CryptosuiteShannon},
		LoginCryptoHello: &keyexchange.LoginCryptoHello{
			DiffieHellman: &keyexchange.DiffieHellmanHello{
				Gc: publicKey,
				// The literal value 1 is preserved verbatim; upstream
				// never documents what "known" server keys means beyond
				// this flag (spec.md §9 open question).
				ServerKeysKnown: 1,
			},
		},
		ClientNonce: clientNonce,
		Padding:     helloPadding,
	}
}

// helloEnvelope prepends the version prefix and big-endian total length
// described in spec.md §6:
//
//	byte 0: 0x00
//	byte 1: 0x04
//	bytes 2-5: total envelope length (2 + 4 + payload)
//	bytes 6..: serialized ClientHello
func helloEnvelope(payload []byte) []byte {
	size := uint32(2 + 4 + len(payload))
	buf := make([]byte, 6+len(payload))
	buf[0] = 0x00
	buf[1] = 0x04
	binary.BigEndian.PutUint32(buf[2:6], size)
	copy(buf[6:], payload)
	return buf
}

// sendClientHello builds, writes, and appends-to-transcript the
// ClientHello envelope. The envelope is appended only after the write
// succeeds; a failed write is reported as KindIO.
func sendClientHello(w io.Writer, tr *transcript, publicKey, clientNonce []byte) error {
	hello := buildClientHello(publicKey, clientNonce)
	envelope := helloEnvelope(hello.Marshal())
	if _, err := w.Write(envelope); err != nil {
		return wrapErr(KindIO, "send_client_hello", err)
	}
	tr.append(envelope)
	return nil
}
