package digest

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5Base64(t *testing.T) {
	assert.Equal(t, "bNNVbesNpUvKBgtMOUeYOQ==", MD5Base64("Hello, world!"))
	assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", MD5Base64(""))
}

func TestMD5UUID(t *testing.T) {
	assert.Equal(t, "6cd3556d-eb0d-a54b-ca06-0b4c39479839", MD5UUID("Hello, world!").String())
}

func TestVerify(t *testing.T) {
	assert.True(t, VerifyMD5Base64("Hello, world!", "bNNVbesNpUvKBgtMOUeYOQ=="))
	assert.False(t, VerifyMD5Base64("Hello, world", "bNNVbesNpUvKBgtMOUeYOQ=="))
	assert.False(t, VerifyMD5Base64("Hello, world!", ""))

	id := uuid.MustParse("6cd3556d-eb0d-a54b-ca06-0b4c39479839")
	assert.True(t, VerifyMD5UUID("Hello, world!", id))
	assert.False(t, VerifyMD5UUID("hello, world!", id))
}

func TestRandomBase64(t *testing.T) {
	a, err := RandomBase64()
	require.NoError(t, err)
	b, err := RandomBase64()
	require.NoError(t, err)

	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, TokenBytes)
}
