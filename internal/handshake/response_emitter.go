package handshake

import (
	"encoding/binary"
	"io"

	"github.com/nlkli/fyspoti/internal/keyexchange"
)

// sendClientResponse builds and writes the ClientResponsePlaintext
// envelope (spec.md §4.6). Unlike the hello/response exchange, this
// envelope is not appended to the transcript — the transcript closed the
// moment key derivation ran.
func sendClientResponse(w io.Writer, challenge []byte) error {
	resp := &keyexchange.ClientResponsePlaintext{
		LoginCryptoResponse: &keyexchange.LoginCryptoResponse{
			DiffieHellman: &keyexchange.DiffieHellmanResponse{Hmac: challenge},
		},
		// TODO(spec.md §9 open question): sent empty because current
		// access points accept it; unknown whether a future server
		// version will require non-empty content here.
		PoWResponsePresent:    true,
		CryptoResponsePresent: true,
	}

	payload := resp.Marshal()
	size := uint32(4 + len(payload))
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], size)
	copy(buf[4:], payload)

	if _, err := w.Write(buf); err != nil {
		return wrapErr(KindIO, "send_client_response", err)
	}
	return nil
}
