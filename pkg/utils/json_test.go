package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panel struct {
	Caption     string `json:"caption"`
	ImagePrompt string `json:"imagePrompt"`
}

func TestParseJSON(t *testing.T) {
	want := panel{Caption: "x", ImagePrompt: "y"}

	tests := []struct {
		name string
		in   string
	}{
		{"plain", `{"caption":"x","imagePrompt":"y"}`},
		{"fenced", "```json\n{\"caption\":\"x\",\"imagePrompt\":\"y\"}\n```"},
		{"bare fence", "```\n{\"caption\":\"x\",\"imagePrompt\":\"y\"}\n```"},
		{"prose around", `Here you go: {"caption":"x","imagePrompt":"y"} Enjoy!`},
		{"reasoning preamble", "<think>the user wants {json}</think>\n{\"caption\":\"x\",\"imagePrompt\":\"y\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[panel](tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseJSON_Array(t *testing.T) {
	got, err := ParseJSON[[]panel]("Sure!\n[{\"caption\":\"a\"},{\"caption\":\"b\"}]\nThat's all.")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Caption)
	assert.Equal(t, "b", got[1].Caption)
}

func TestParseJSON_Failures(t *testing.T) {
	for _, in := range []string{
		"",
		"no json here",
		`{"caption": "x"`,
		`prefix {"caption": } suffix`,
	} {
		_, err := ParseJSON[panel](in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrJSONFormat), in)

		var fe *FormatError
		assert.True(t, errors.As(err, &fe))
	}
}

func TestParseJSON_TypeMismatchIsFormatError(t *testing.T) {
	_, err := ParseJSON[panel](`["not", "an", "object"]`)
	assert.ErrorIs(t, err, ErrJSONFormat)
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("  {\"a\":1}  "))
}
