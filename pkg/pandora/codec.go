package pandora

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/blowfish"
)

// Codec encrypts outbound login payloads and decrypts the server's sync
// blob using a partner's key pair.
//
// The two directions use distinct keys, so they are held as two separately
// keyed ciphers. Encoding then decoding is not a round trip.
//
// Both directions run Blowfish in ECB mode with NUL padding; the output of
// Encode is lowercase hex.
type Codec struct {
	enc *blowfish.Cipher
	dec *blowfish.Cipher
}

// NewCodec creates a codec from a partner's encrypt and decrypt keys.
func NewCodec(encryptKey, decryptKey string) (*Codec, error) {
	enc, err := blowfish.NewCipher([]byte(encryptKey))
	if err != nil {
		return nil, fmt.Errorf("pandora: invalid encrypt key: %w", err)
	}
	dec, err := blowfish.NewCipher([]byte(decryptKey))
	if err != nil {
		return nil, fmt.Errorf("pandora: invalid decrypt key: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Encode encrypts plaintext with the encrypt key and returns it hex encoded.
func (c *Codec) Encode(plaintext []byte) string {
	buf := make([]byte, padLen(len(plaintext)))
	copy(buf, plaintext)

	for i := 0; i < len(buf); i += blowfish.BlockSize {
		c.enc.Encrypt(buf[i:i+blowfish.BlockSize], buf[i:i+blowfish.BlockSize])
	}
	return hex.EncodeToString(buf)
}

// Decode hex decodes ciphertext and decrypts it with the decrypt key,
// stripping trailing NUL padding.
//
// A wrong key produces garbage rather than an error; callers must validate
// what they get back.
func (c *Codec) Decode(ciphertext string) ([]byte, error) {
	buf, err := hex.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("pandora: decode hex: %w", err)
	}
	if len(buf)%blowfish.BlockSize != 0 {
		return nil, fmt.Errorf("pandora: ciphertext length %d is not a multiple of %d", len(buf), blowfish.BlockSize)
	}

	for i := 0; i < len(buf); i += blowfish.BlockSize {
		c.dec.Decrypt(buf[i:i+blowfish.BlockSize], buf[i:i+blowfish.BlockSize])
	}
	return bytes.TrimRight(buf, "\x00"), nil
}

// ParseSyncTime interprets a decrypted sync blob as a server timestamp.
//
// The first header bytes are discarded; the leading ASCII digits of the
// remainder are the server time in Unix seconds.
func ParseSyncTime(plain []byte, header int) (time.Time, error) {
	if header < 0 || len(plain) <= header {
		return time.Time{}, fmt.Errorf("sync blob too short (%d bytes)", len(plain))
	}
	body := plain[header:]

	n := 0
	for n < len(body) && body[n] >= '0' && body[n] <= '9' {
		n++
	}
	if n == 0 {
		return time.Time{}, fmt.Errorf("sync blob has no timestamp")
	}

	secs, err := strconv.ParseInt(string(body[:n]), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sync time: %w", err)
	}
	return time.Unix(secs, 0), nil
}

func padLen(n int) int {
	if n == 0 {
		return blowfish.BlockSize
	}
	if r := n % blowfish.BlockSize; r != 0 {
		return n + blowfish.BlockSize - r
	}
	return n
}
