package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamCipherRoundTrips(t *testing.T) {
	enc, err := NewStreamCipher(1234)
	require.NoError(t, err)
	dec, err := NewStreamCipher(1234)
	require.NoError(t, err)

	plain := []byte("hello battlecore frame body")
	orig := append([]byte(nil), plain...)

	cipherText := enc.Encrypt(append([]byte(nil), plain...))
	require.NotEqual(t, orig, cipherText)

	roundTripped := dec.Decrypt(append([]byte(nil), cipherText...))
	require.Equal(t, orig, roundTripped)
}

func TestStreamCipherDifferentSeedsDiverge(t *testing.T) {
	a, err := NewStreamCipher(1)
	require.NoError(t, err)
	b, err := NewStreamCipher(2)
	require.NoError(t, err)

	plain := []byte("same plaintext, different seed")
	ca := a.Encrypt(append([]byte(nil), plain...))
	cb := b.Encrypt(append([]byte(nil), plain...))
	require.NotEqual(t, ca, cb)
}
