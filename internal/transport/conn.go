// Package transport implements the framed, encrypted channel the
// handshake hands off to once the key schedule completes (spec.md §4.7).
// It plays the same role here that package rlpx's Conn plays after
// encHandshake: a thin wrapper around the raw socket that multiplexes
// typed, MAC-protected frames, except the wire framing is Shannon's
// fixed {cmd, length, payload, mac} layout rather than RLPx's chunked
// RLP-header scheme.
package transport

import (
	"io"
	"net"
	"sync"

	"github.com/nlkli/fyspoti/pkg/packettype"
)

// Conn is an established, post-handshake access-point session. It owns
// the underlying stream and the two independent per-direction cipher
// states seeded from the handshake's send_key/recv_key (spec.md §3). A
// Conn is safe for concurrent use: SendPacket calls are serialized by one
// mutex and ReadPacket calls by another, so each frame is written or read
// whole, and a send never waits on a read.
type Conn struct {
	raw io.ReadWriteCloser

	wmu sync.Mutex
	out *frameRW

	rmu sync.Mutex
	in  *frameRW
}

// New wraps raw in a framed, encrypted channel keyed by sendKey (for
// frames this side writes) and recvKey (for frames this side reads). Both
// keys must be 32 bytes, as derived by the handshake's key schedule.
func New(raw io.ReadWriteCloser, sendKey, recvKey []byte) *Conn {
	return &Conn{
		raw: raw,
		out: newFrameRW(sendKey),
		in:  newFrameRW(recvKey),
	}
}

// SendPacket encrypts and writes one (packet_type, payload) frame.
func (c *Conn) SendPacket(t packettype.Type, payload []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.out.writeFrame(c.raw, byte(t), payload)
}

// ReadPacket blocks until one frame has been read, decrypted, and
// MAC-verified, returning its packet type and payload.
func (c *Conn) ReadPacket() (packettype.Type, []byte, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	cmd, payload, err := c.in.readFrame(c.raw)
	if err != nil {
		return 0, nil, err
	}
	return packettype.FromByte(cmd), payload, nil
}

// Close closes the underlying stream. Pending reads/writes fail.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// LocalAddr and RemoteAddr pass through to the underlying net.Conn when
// available; they return nil for raw streams that aren't network
// connections (e.g. the net.Pipe() halves used in tests).
func (c *Conn) LocalAddr() net.Addr {
	if nc, ok := c.raw.(net.Conn); ok {
		return nc.LocalAddr()
	}
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	if nc, ok := c.raw.(net.Conn); ok {
		return nc.RemoteAddr()
	}
	return nil
}
