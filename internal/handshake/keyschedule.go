package handshake

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // protocol-mandated, predates HKDF
)

const (
	challengeLen = 20 // one SHA1 block
	sendKeyLen   = 32
	recvKeyLen   = 32
	blockLen     = 20
	numBlocks    = 5
	materialLen  = numBlocks * blockLen // 100 bytes
)

// keys holds the three values derived at the end of the exchange
// (spec.md §3, §4.5): the challenge HMAC the client sends back, and the
// send/receive keys handed to the framed transport.
type keys struct {
	challenge []byte
	sendKey   []byte
	recvKey   []byte
}

// deriveKeys runs the bespoke HMAC-SHA1 expansion over sharedSecret and
// transcript. It predates HKDF and must be reproduced exactly:
//
//	for i in 1..=5:
//	    block_i = HMAC-SHA1(key=sharedSecret, msg=transcript || byte(i))
//	material = block_1 || ... || block_5                    // 100 bytes
//	challenge = HMAC-SHA1(key=material[0:20], msg=transcript) // 20 bytes
//	send_key  = material[20:52]                                // 32 bytes
//	recv_key  = material[52:84]                                // 32 bytes
//	material[84:100] is discarded
//
// The counter byte is a single unsigned byte appended after the whole
// transcript — not part of a fixed-width field — and the first derived
// block becomes the HMAC key for the challenge rather than keying
// material in its own right (spec.md §4.5 rationale).
func deriveKeys(sharedSecret, transcript []byte) *keys {
	material := make([]byte, 0, materialLen)
	for i := byte(1); i <= numBlocks; i++ {
		mac := hmac.New(sha1.New, sharedSecret)
		mac.Write(transcript)
		mac.Write([]byte{i})
		material = mac.Sum(material)
	}

	challengeMAC := hmac.New(sha1.New, material[:blockLen])
	challengeMAC.Write(transcript)
	challenge := challengeMAC.Sum(nil)

	return &keys{
		challenge: challenge,
		sendKey:   append([]byte(nil), material[blockLen:blockLen+sendKeyLen]...),
		recvKey:   append([]byte(nil), material[blockLen+sendKeyLen:blockLen+sendKeyLen+recvKeyLen]...),
	}
}
