package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBig5RoundTripsASCII(t *testing.T) {
	encoded, err := EncodeBig5("hello")
	require.NoError(t, err)
	decoded, err := DecodeBig5(encoded)
	require.NoError(t, err)
	require.Equal(t, "hello", decoded)
}
