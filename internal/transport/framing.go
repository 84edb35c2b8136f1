package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/nlkli/fyspoti/internal/shannon"
)

// headerLen is the plaintext header size: 1 command byte + 2-byte
// big-endian length (spec.md §4.7: "{u8 cmd, u16 be length, payload[length],
// u32 mac}").
const headerLen = 3

// macLen is the trailing integrity tag size.
const macLen = 4

// maxPayloadLen bounds a single frame's payload; the length field is 16
// bits so this is also its hard ceiling.
const maxPayloadLen = 1<<16 - 1

var errBadFrameMAC = errors.New("transport: bad frame MAC")

// frameRW is one direction's worth of framing state: a cipher plus
// fixed-size scratch buffers for reading the encrypted header and MAC
// (payload and write buffers are still allocated per frame). It mirrors the role
// rlpx's frameRW plays for RLPx frames, adapted to Shannon's simpler
// fixed-header-plus-trailing-MAC layout instead of RLPx's AES-CTR header/
// body/MAC triad.
type frameRW struct {
	cipher *shannon.Cipher
	hdrBuf [headerLen]byte
	macBuf [macLen]byte
}

func newFrameRW(key []byte) *frameRW {
	return &frameRW{cipher: shannon.New(key)}
}

// writeFrame encrypts and writes one (cmd, payload) frame.
func (f *frameRW) writeFrame(w io.Writer, cmd byte, payload []byte) error {
	if len(payload) > maxPayloadLen {
		return fmt.Errorf("transport: payload of %d bytes exceeds frame limit %d", len(payload), maxPayloadLen)
	}

	plain := make([]byte, headerLen+len(payload))
	plain[0] = cmd
	binary.BigEndian.PutUint16(plain[1:3], uint16(len(payload)))
	copy(plain[headerLen:], payload)

	cipherText := make([]byte, len(plain))
	f.cipher.Encrypt(cipherText, plain)
	tag := f.cipher.Tag()

	if _, err := w.Write(cipherText); err != nil {
		return err
	}
	if _, err := w.Write(tag[:]); err != nil {
		return err
	}
	return nil
}

// readFrame reads, decrypts, and MAC-checks one frame, returning its
// command byte and plaintext payload.
func (f *frameRW) readFrame(r io.Reader) (byte, []byte, error) {
	if _, err := io.ReadFull(r, f.hdrBuf[:]); err != nil {
		return 0, nil, err
	}
	hdr := make([]byte, headerLen)
	f.cipher.Decrypt(hdr, f.hdrBuf[:])

	cmd := hdr[0]
	payloadLen := binary.BigEndian.Uint16(hdr[1:3])

	var payload []byte
	if payloadLen > 0 {
		cipherPayload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, cipherPayload); err != nil {
			return 0, nil, err
		}
		payload = make([]byte, payloadLen)
		f.cipher.Decrypt(payload, cipherPayload)
	}

	if _, err := io.ReadFull(r, f.macBuf[:]); err != nil {
		return 0, nil, err
	}
	tag := f.cipher.Tag()
	if !bytes.Equal(tag[:], f.macBuf[:]) {
		return 0, nil, errBadFrameMAC
	}

	return cmd, payload, nil
}
