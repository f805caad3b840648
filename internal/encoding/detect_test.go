package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nileshdj/pavti/internal/encoding"
)

func TestDecode_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Devanagari characters should pass through unchanged.
	input := "name,receipt_no\nसुरेश,101\nमहेश,102\n"
	r, err := encoding.Decode(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestDecode_Windows1252(t *testing.T) {
	// Windows-1252 encoded "José;São Paulo\n".
	// In Windows-1252: é = 0xE9, ã = 0xE3
	latin1Bytes := []byte{
		'J', 'o', 's', 0xE9, ';',
		'S', 0xE3, 'o', ' ', 'P', 'a', 'u', 'l', 'o', '\n',
	}

	r, err := encoding.Decode(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "José;São Paulo\n", string(got))
}

func TestDecode_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("name,city\nJosé,Pune\n")
	input := append(bom, content...)

	r, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "name,city\nJosé,Pune\n", string(got))
}

func TestDecode_UTF16LEBOM(t *testing.T) {
	// UTF-16LE with BOM should be transcoded to UTF-8.
	input := []byte{0xFF, 0xFE}
	for _, r := range "name\n" {
		input = append(input, byte(r), 0x00)
	}

	r, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "name\n", string(got))
}
