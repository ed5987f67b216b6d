package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStylePrompt(t *testing.T) {
	assert.Equal(t, "Anime style, cel shaded, vibrant, Studio Ghibli inspired details", StylePrompt(StyleAnime))
	assert.Contains(t, StylePrompt("noir"), "black and white")
	assert.Equal(t, StylePrompt(StyleComicBook), StylePrompt("unknown-style"))
	assert.Equal(t, StylePrompt(StyleComicBook), StylePrompt(""))

	for _, s := range Styles {
		assert.NotEmpty(t, s.Prompt(), s)
	}
	assert.Len(t, Styles, 12)
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleBlackWhite, ParseStyle("Noir"))
	assert.Equal(t, StyleRetro80s, ParseStyle("retro-80s"))
	assert.Equal(t, StyleComicBook, ParseStyle("vaporwave"))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Romanian, ParseLanguage("RO"))
	assert.Equal(t, "Russian", ParseLanguage("ru").Name())
	assert.Equal(t, English, ParseLanguage("de"))
}

func TestCharacterJSON(t *testing.T) {
	in := []byte(`{"id":"c1","name":"Ana","description":"red scarf","imageUrl":"data:image/png;base64,iVBORw0KGgo="}`)

	var c Character
	require.NoError(t, json.Unmarshal(in, &c))
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "image/png", c.AvatarMIME)
	assert.True(t, c.HasAvatar())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Bo","description":"tall"}`), &c))
	assert.False(t, c.HasAvatar())
}

func TestFormatsAreStrictObjects(t *testing.T) {
	for _, f := range []*Format{PanelDataFormat, ScriptFormat} {
		require.NotNil(t, f.Schema)
		assert.Equal(t, "object", f.Schema.Type, f.Name)
		assert.NotEmpty(t, f.Schema.Required, f.Name)
	}
	assert.ElementsMatch(t, []string{"caption", "imagePrompt"}, PanelDataFormat.Schema.Required)
}
