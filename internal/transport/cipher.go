package transport

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// StreamCipher wraps a session-seeded keystream applied to frame bytes
// ahead of length-prefix parsing, adapted from the teacher's
// net.Cipher (a seeded XOR rolling cipher keyed at handshake time). We
// keep the "seed once per session, stream thereafter" shape but generate
// the keystream with golang.org/x/crypto/chacha20 rather than the
// teacher's hand-rolled XOR chain. Socket does not apply it and nothing
// reads the CipherEnabled config key, so frames on the wire are cleartext.
type StreamCipher struct {
	enc *chacha20.Cipher
	dec *chacha20.Cipher
}

// NewStreamCipher derives a 256-bit key and 96-bit nonce from seed via
// SHA-256 expansion, matching the teacher's pattern of deriving its eb/db
// key arrays from a single int32 handshake seed.
func NewStreamCipher(seed int32) (*StreamCipher, error) {
	var seedBytes [4]byte
	binary.BigEndian.PutUint32(seedBytes[:], uint32(seed))

	keyDigest := sha256.Sum256(append([]byte("battlecore-stream-key"), seedBytes[:]...))
	nonceDigest := sha256.Sum256(append([]byte("battlecore-stream-nonce"), seedBytes[:]...))

	enc, err := chacha20.NewUnauthenticatedCipher(keyDigest[:], nonceDigest[:chacha20.NonceSize])
	if err != nil {
		return nil, err
	}
	dec, err := chacha20.NewUnauthenticatedCipher(keyDigest[:], nonceDigest[:chacha20.NonceSize])
	if err != nil {
		return nil, err
	}
	return &StreamCipher{enc: enc, dec: dec}, nil
}

// Encrypt XORs the keystream into data in place and returns it. The
// encode and decode streams advance independently, one per direction,
// same as the teacher's separate eb/db key state.
func (c *StreamCipher) Encrypt(data []byte) []byte {
	c.enc.XORKeyStream(data, data)
	return data
}

func (c *StreamCipher) Decrypt(data []byte) []byte {
	c.dec.XORKeyStream(data, data)
	return data
}
