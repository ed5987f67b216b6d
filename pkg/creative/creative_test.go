package creative

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelsmith/pkg/hybrid"
	"panelsmith/pkg/inference"
	"panelsmith/pkg/schema"
	"panelsmith/pkg/utils"
)

type fakeText struct {
	reply string
	err   error
	reqs  []inference.Request
}

func (f *fakeText) GenerateText(_ context.Context, req inference.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func TestEnhancePrompt(t *testing.T) {
	text := &fakeText{reply: "  \"A lone astronaut on a red dune at dusk.\"  "}
	out, err := New(text).EnhancePrompt(context.Background(), "astronaut on mars", schema.English)
	require.NoError(t, err)
	assert.Equal(t, "A lone astronaut on a red dune at dusk.", out)

	require.Len(t, text.reqs, 1)
	assert.False(t, text.reqs[0].JSON)
	assert.Equal(t, "astronaut on mars", text.reqs[0].User)

	_, err = New(text).EnhancePrompt(context.Background(), "   ", schema.English)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestGeneratePanelText(t *testing.T) {
	text := &fakeText{reply: "```json\n{\"caption\":\"Noaptea cade.\",\"imagePrompt\":\"A detective in rain\"}\n```"}
	chars := []schema.Character{
		{Name: "Ana", Description: "red scarf, short black hair"},
		{Name: "Bo", Description: "tall, trench coat"},
	}

	data, err := New(text).GeneratePanelText(context.Background(), PanelRequest{
		Scene:      "they meet at the docks",
		Characters: chars,
		Style:      "noir",
		Language:   schema.Romanian,
	})
	require.NoError(t, err)
	assert.Equal(t, "Noaptea cade.", data.Caption)
	assert.Equal(t, "A detective in rain", data.ImagePrompt)

	req := text.reqs[0]
	assert.True(t, req.JSON)
	assert.Equal(t, schema.PanelDataFormat, req.Format)
	assert.Contains(t, req.System, schema.StylePrompt(schema.StyleBlackWhite))
	assert.Contains(t, req.System, "Romanian")
	assert.Contains(t, req.System, "Ana: red scarf, short black hair")
	assert.Contains(t, req.System, "Bo: tall, trench coat")
	assert.Contains(t, req.User, "Ana: red scarf, short black hair")
	assert.Contains(t, req.User, "Bo: tall, trench coat")
	assert.Contains(t, req.User, "they meet at the docks")
}

func TestGeneratePanelText_Errors(t *testing.T) {
	t.Run("malformed reply", func(t *testing.T) {
		_, err := New(&fakeText{reply: "sorry, no"}).GeneratePanelText(context.Background(), PanelRequest{Scene: "s"})
		assert.ErrorIs(t, err, utils.ErrJSONFormat)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := New(&fakeText{reply: `{"caption":"only caption"}`}).GeneratePanelText(context.Background(), PanelRequest{Scene: "s"})
		assert.ErrorIs(t, err, utils.ErrJSONFormat)
	})

	t.Run("exhausted propagates", func(t *testing.T) {
		_, err := New(&fakeText{err: &hybrid.ExhaustedError{}}).GeneratePanelText(context.Background(), PanelRequest{Scene: "s"})
		assert.ErrorIs(t, err, hybrid.ErrAllProvidersExhausted)
	})
}

func scriptJSON(n int, wrapped bool) string {
	body := "["
	for i := range n {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"description":"desc %d","caption":"cap %d"}`, i+1, i+1)
	}
	body += "]"
	if wrapped {
		return `{"panels":` + body + `}`
	}
	return body
}

func TestGenerateScript(t *testing.T) {
	t.Run("bare array keeps order", func(t *testing.T) {
		text := &fakeText{reply: "Here is the script:\n" + scriptJSON(4, false)}
		script, err := New(text).GenerateScript(context.Background(), ScriptRequest{Story: "a heist", Language: schema.Russian})
		require.NoError(t, err)
		require.Len(t, script, DefaultPanels)
		for i, unit := range script {
			assert.Equal(t, fmt.Sprintf("desc %d", i+1), unit.Description)
			assert.Equal(t, fmt.Sprintf("cap %d", i+1), unit.Caption)
		}

		req := text.reqs[0]
		assert.True(t, req.JSON)
		assert.Contains(t, req.System, "exactly 4")
		assert.Contains(t, req.System, defaultPersona)
		assert.Contains(t, req.System, "MUST be written in Russian")
	})

	t.Run("object wrapped array", func(t *testing.T) {
		script, err := New(&fakeText{reply: scriptJSON(6, true)}).GenerateScript(context.Background(), ScriptRequest{Story: "s", NumPanels: 6})
		require.NoError(t, err)
		assert.Len(t, script, 6)
	})

	t.Run("unknown wrapper key", func(t *testing.T) {
		reply := `{"scenes":` + scriptJSON(3, false) + `}`
		script, err := New(&fakeText{reply: reply}).GenerateScript(context.Background(), ScriptRequest{Story: "s", NumPanels: 3})
		require.NoError(t, err)
		assert.Equal(t, "desc 3", script[2].Description)
	})

	t.Run("first described array wins in document order", func(t *testing.T) {
		reply := `{"characters":[{"name":"Ion"}],"scenes":` + scriptJSON(4, false) + `,"extras":[{"description":"x"}]}`
		for range 50 {
			script, err := New(&fakeText{reply: reply}).GenerateScript(context.Background(), ScriptRequest{Story: "s"})
			require.NoError(t, err)
			require.Len(t, script, 4)
			assert.Equal(t, "desc 1", script[0].Description)
		}
	})

	t.Run("custom persona keeps language contract", func(t *testing.T) {
		text := &fakeText{reply: scriptJSON(4, false)}
		_, err := New(text).GenerateScript(context.Background(), ScriptRequest{Story: "s", Persona: "You are a noir novelist.", Language: schema.Romanian})
		require.NoError(t, err)
		assert.Contains(t, text.reqs[0].System, "You are a noir novelist.")
		assert.NotContains(t, text.reqs[0].System, defaultPersona)
		assert.Contains(t, text.reqs[0].System, "MUST be written in Romanian")
	})

	t.Run("too many panels are truncated", func(t *testing.T) {
		script, err := New(&fakeText{reply: scriptJSON(5, true)}).GenerateScript(context.Background(), ScriptRequest{Story: "s"})
		require.NoError(t, err)
		assert.Len(t, script, 4)
		assert.Equal(t, "desc 4", script[3].Description)
	})

	t.Run("too few panels fail", func(t *testing.T) {
		_, err := New(&fakeText{reply: scriptJSON(2, false)}).GenerateScript(context.Background(), ScriptRequest{Story: "s"})
		assert.ErrorIs(t, err, utils.ErrJSONFormat)
	})

	t.Run("default panels option", func(t *testing.T) {
		script, err := New(&fakeText{reply: scriptJSON(3, false)}, WithDefaultPanels(3)).GenerateScript(context.Background(), ScriptRequest{Story: "s"})
		require.NoError(t, err)
		assert.Len(t, script, 3)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := New(&fakeText{reply: `{"title":"x"}`}).GenerateScript(context.Background(), ScriptRequest{Story: "s"})
		assert.ErrorIs(t, err, utils.ErrJSONFormat)
	})
}

type fakeDescriber struct {
	text string
	err  error
	mime string
}

func (f *fakeDescriber) Describe(_ context.Context, _ []byte, mime, _ string) (string, error) {
	f.mime = mime
	return f.text, f.err
}

func TestAnalyzeCharacter(t *testing.T) {
	d := &fakeDescriber{text: "green eyes"}
	out, err := New(&fakeText{}, WithDescriber(d)).AnalyzeCharacter(context.Background(), []byte("img"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "green eyes", out)
	assert.Equal(t, "image/png", d.mime)

	_, err = New(&fakeText{}).AnalyzeCharacter(context.Background(), []byte("img"), "image/png")
	assert.ErrorIs(t, err, inference.ErrMissingCredential)

	_, err = New(&fakeText{}, WithDescriber(&fakeDescriber{err: inference.ErrSafetyBlocked})).AnalyzeCharacter(context.Background(), []byte("img"), "image/png")
	assert.True(t, errors.Is(err, inference.ErrSafetyBlocked))
}
