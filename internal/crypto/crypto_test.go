package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestRoundTrip(t *testing.T) {
	box, err := New(testKey)
	require.NoError(t, err)
	require.True(t, box.Enabled())

	for _, plain := range []string{"", "Иванов Иван Иванович", "slesar'-сантехник 3 разряда"} {
		enc, err := box.Encrypt(plain)
		require.NoError(t, err)
		if plain != "" {
			assert.NotEqual(t, plain, enc)
		}

		dec, err := box.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, dec)
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	box, err := New(testKey)
	require.NoError(t, err)

	a, err := box.Encrypt("Петров")
	require.NoError(t, err)
	b, err := box.Encrypt("Петров")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh nonce per value")
}

func TestPassThrough(t *testing.T) {
	box, err := New("")
	require.NoError(t, err)
	assert.False(t, box.Enabled())

	enc, err := box.Encrypt("Сидоров")
	require.NoError(t, err)
	assert.Equal(t, "Сидоров", enc)

	dec, err := box.Decrypt("Сидоров")
	require.NoError(t, err)
	assert.Equal(t, "Сидоров", dec)
}

func TestBadKey(t *testing.T) {
	_, err := New("not-hex")
	require.Error(t, err)

	_, err = New("abcd")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "32 bytes"))
}

func TestDecryptGarbage(t *testing.T) {
	box, err := New(testKey)
	require.NoError(t, err)

	_, err = box.Decrypt("AAAA")
	require.Error(t, err)
}
