package shannon

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte("the quick brown fox jumps over the lazy dog, frame one")

	enc := New(key)
	ciphertext := make([]byte, len(plaintext))
	enc.Encrypt(ciphertext, plaintext)
	encTag := enc.Tag()

	dec := New(key)
	recovered := make([]byte, len(ciphertext))
	dec.Decrypt(recovered, ciphertext)
	decTag := dec.Tag()

	if string(recovered) != string(plaintext) {
		t.Fatalf("roundtrip mismatch: got %q want %q", recovered, plaintext)
	}
	if encTag != decTag {
		t.Fatalf("tag mismatch: enc=%x dec=%x", encTag, decTag)
	}
}

// TestEncryptOneCallDecryptTwoCalls reproduces the real transport split:
// writeFrame encrypts header+payload in a single Encrypt call, while
// readFrame decrypts the header and payload in two separate Decrypt
// calls. Both sides must still agree on the accumulator position and
// therefore on the resulting Tag.
func TestEncryptOneCallDecryptTwoCalls(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 3)
	}

	header := []byte{0x01, 0x00, 0x05}
	payload := []byte("hello")
	plaintext := append(append([]byte{}, header...), payload...)

	enc := New(key)
	ciphertext := make([]byte, len(plaintext))
	enc.Encrypt(ciphertext, plaintext)
	encTag := enc.Tag()

	dec := New(key)
	gotHeader := make([]byte, len(header))
	dec.Decrypt(gotHeader, ciphertext[:len(header)])
	gotPayload := make([]byte, len(payload))
	dec.Decrypt(gotPayload, ciphertext[len(header):])
	decTag := dec.Tag()

	if string(gotHeader) != string(header) {
		t.Fatalf("header mismatch: got %x want %x", gotHeader, header)
	}
	if string(gotPayload) != string(payload) {
		t.Fatalf("payload mismatch: got %q want %q", gotPayload, payload)
	}
	if encTag != decTag {
		t.Fatalf("tag mismatch between one-call encrypt and two-call decrypt: enc=%x dec=%x", encTag, decTag)
	}
}

func TestTagChangesAcrossFrames(t *testing.T) {
	key := make([]byte, 32)
	c := New(key)

	buf := make([]byte, 16)
	c.Encrypt(buf, make([]byte, 16))
	tag1 := c.Tag()

	c.Encrypt(buf, make([]byte, 16))
	tag2 := c.Tag()

	if tag1 == tag2 {
		t.Fatal("expected successive frame tags to differ")
	}
}

func TestDifferentKeysProduceDifferentKeystreams(t *testing.T) {
	keyA := make([]byte, 32)
	keyB := make([]byte, 32)
	keyB[0] = 1

	plaintext := make([]byte, 32)

	a := New(keyA)
	outA := make([]byte, len(plaintext))
	a.Encrypt(outA, plaintext)

	b := New(keyB)
	outB := make([]byte, len(plaintext))
	b.Encrypt(outB, plaintext)

	if string(outA) == string(outB) {
		t.Fatal("expected different keys to produce different keystreams")
	}
}
