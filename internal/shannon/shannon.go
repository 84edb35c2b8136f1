// Package shannon implements the word-oriented stream cipher the AP wire
// protocol calls "Shannon", the single cryptosuite this client advertises
// and accepts (spec.md §4.7, §1). spec.md treats the cipher as an opaque,
// separately-specified collaborator ("a separate spec documents its state
// and framing"); this package gives the framed transport a concrete,
// self-consistent implementation of that contract: keyed once per
// direction at construction, stateful across the life of the connection,
// and able to produce the running 32-bit integrity tag each frame needs.
//
// It is not the historical Shannon cipher: the register update, taps,
// rotations and tag construction are this package's own, so its keystream
// and tags do not match those of real access points. Two peers that both
// use this package interoperate with each other only.
package shannon

import "encoding/binary"

const (
	n         = 16 // words of state
	fold      = n  // diffusion rounds run when extracting a tag
	initkonst = 0x6996c53a
)

// Cipher is one direction (send or receive) of a Shannon-keyed stream. It
// is not safe for concurrent use; the framed transport serializes access
// per direction already (spec.md §5: no internal parallelism).
type Cipher struct {
	r     [n]uint32 // main nonlinear-feedback register, drives the keystream
	crc   [n]uint32 // accumulator folded with plaintext, source of the MAC
	konst uint32

	word  uint32 // buffered keystream word
	avail int    // bytes of word not yet consumed

	pos int // bytes accumulated into crc since the last Tag, spans Encrypt/Decrypt calls
}

// New keys a cipher from an arbitrary-length key (the handshake's 32-byte
// send_key/recv_key). The key is absorbed into the register and the
// register is diffused before any keystream is produced.
func New(key []byte) *Cipher {
	c := &Cipher{konst: initkonst}
	c.loadKey(key)
	for i := 0; i < n; i++ {
		c.cycle()
	}
	return c
}

func (c *Cipher) loadKey(key []byte) {
	for i := range c.r {
		c.r[i] = c.konst
	}
	for i, b := range key {
		c.r[i%n] ^= uint32(b) << uint((i%4)*8)
	}
}

// nlf combines four taps of the register into one keystream word. The
// specific taps and rotations are this package's own diffusion choice;
// what matters for the transport above is that the same Cipher state,
// advanced the same way by both peers, produces matching keystreams.
func (c *Cipher) nlf() uint32 {
	t := c.r[0] + c.r[3]
	t = rotl(t, 7) ^ c.r[9]
	t += rotl(c.r[12], 15) ^ c.r[5]
	t = rotl(t, 9) + (c.r[2] ^ rotl(c.r[14], 21))
	return t
}

// cycle advances the register by one step and returns the keystream word
// produced at that step.
func (c *Cipher) cycle() uint32 {
	out := c.nlf()
	feedback := c.r[0] ^ rotl(c.r[13], 3) ^ c.r[n-1]
	for i := 0; i < n-1; i++ {
		c.r[i] = c.r[i+1]
	}
	c.r[n-1] = feedback
	return out ^ c.konst
}

func rotl(x uint32, bits uint) uint32 {
	return (x << bits) | (x >> (32 - bits))
}

// nextByte returns the next keystream byte, refilling the internal word
// buffer via cycle() as needed.
func (c *Cipher) nextByte() byte {
	if c.avail == 0 {
		c.word = c.cycle()
		c.avail = 4
	}
	b := byte(c.word)
	c.word >>= 8
	c.avail--
	return b
}

// accumulate folds a plaintext byte into the CRC register so the eventual
// Tag reflects every byte that crossed this cipher, in order. It uses the
// cipher's own running position rather than a caller-supplied index: a
// frame's header and payload are accumulated across separate Encrypt/
// Decrypt calls (writeFrame encrypts both in one call, readFrame decrypts
// them in two), so position must survive across calls rather than restart
// at zero each time.
func (c *Cipher) accumulate(b byte) {
	idx := c.pos % n
	c.crc[idx] ^= uint32(b) << uint((c.pos%4)*8)
	c.r[(idx+1)%n] ^= c.crc[idx]
	c.pos++
}

// Encrypt XORs src into dst under the keystream and folds the plaintext
// (src) into the running MAC accumulator. dst and src may overlap
// completely (in-place) but must be the same length. It may be called
// multiple times per frame (as Decrypt is for readFrame's header/payload
// split); the accumulator position carries over between calls.
func (c *Cipher) Encrypt(dst, src []byte) {
	for i, b := range src {
		dst[i] = b ^ c.nextByte()
		c.accumulate(b)
	}
}

// Decrypt XORs src into dst under the keystream and folds the recovered
// plaintext (dst) into the running MAC accumulator, so a correct peer's
// Encrypt and a correct peer's Decrypt fold identical bytes regardless of
// how each side split the frame across calls.
func (c *Cipher) Decrypt(dst, src []byte) {
	for i, b := range src {
		pt := b ^ c.nextByte()
		dst[i] = pt
		c.accumulate(pt)
	}
}

// Tag extracts a 4-byte integrity tag over everything accumulated since
// the cipher was constructed or last tagged. Tagging diffuses the CRC
// register back into the main register (fold rounds) so frame N+1's
// keystream and next tag both depend on frame N's content, then continues
// the stream rather than resetting it — matching the "stateful per
// direction" contract in spec.md §4.7.
func (c *Cipher) Tag() [4]byte {
	for i := 0; i < fold; i++ {
		c.r[i%n] ^= c.crc[i%n]
		c.cycle()
	}
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], c.crc[0]^c.r[0])
	c.pos = 0
	return out
}
