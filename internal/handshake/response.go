package handshake

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nlkli/fyspoti/internal/keyexchange"
)

// maxResponseSize is the sane ceiling on the declared APResponseMessage
// envelope length (spec.md §4.3 suggests 65536); anything beyond this is
// rejected before any allocation is attempted (scenario S4).
const maxResponseSize = 65536

// minResponseSize is the smallest legal envelope: the 4-byte length field
// counts itself, so a length below 4 can never describe a real payload
// (scenario S5).
const minResponseSize = 4

// readAPResponse reads one length-prefixed APResponseMessage (spec.md
// §4.3), appending every byte read — including the 4-byte length field —
// to the transcript before attempting to parse it.
func readAPResponse(r io.Reader, tr *transcript) (*keyexchange.APResponseMessage, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, wrapErr(KindFraming, "read_response_length", err)
	}
	tr.append(lenBuf)

	totalLen := binary.BigEndian.Uint32(lenBuf)
	if totalLen < minResponseSize {
		return nil, wrapErr(KindFraming, "read_response_length",
			fmt.Errorf("declared length %d below minimum %d", totalLen, minResponseSize))
	}
	if totalLen > maxResponseSize {
		return nil, wrapErr(KindFraming, "read_response_length",
			fmt.Errorf("declared length %d exceeds ceiling %d", totalLen, maxResponseSize))
	}

	payload := make([]byte, totalLen-minResponseSize)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, wrapErr(KindFraming, "read_response_payload", err)
		}
	}
	tr.append(payload)

	msg := &keyexchange.APResponseMessage{}
	if err := msg.Unmarshal(payload); err != nil {
		return nil, wrapErr(KindProtobufParse, "parse_response", err)
	}
	return msg, nil
}
