package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL_RoundTrip(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	url := DataURL("image/png", png)
	assert.Contains(t, url, "data:image/png;base64,")

	data, mime, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, png, data)
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "data:image/png,notbase64", "data:image/png;base64,!!!"} {
		_, _, err := DecodeDataURL(in)
		assert.ErrorIs(t, err, ErrInvalidDataURL, in)
	}
}

func TestDecodeDataURL_BareBase64Sniffs(t *testing.T) {
	data, mime, err := DecodeDataURL("iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Len(t, data, 8)
}

func TestDiffWords(t *testing.T) {
	delta := DiffWords("a cat", "a black cat")
	var added []string
	for _, d := range delta {
		if d.Op > 0 {
			added = append(added, d.Text)
		}
	}
	assert.Contains(t, added, "black")
}

func TestLimitStr(t *testing.T) {
	assert.Equal(t, "abc", LimitStr("abc", 3))
	assert.Equal(t, "ab...", LimitStr("abc", 2))
	assert.Equal(t, "пр...", LimitStr("привет", 2))
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chars.json")
	in := map[string]int{"panels": 4}
	require.NoError(t, Save(path, in))

	out, err := Load[map[string]int](path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNumTokens(t *testing.T) {
	n, err := NumTokens("hello world")
	if err != nil {
		t.Skipf("encoding unavailable offline: %v", err)
	}
	assert.Positive(t, n)
}

func TestLines(t *testing.T) {
	assert.Equal(t, "a\nb", Lines("  a ", "", "   ", "b"))
	assert.Empty(t, Lines())
}
