package schema

import (
	"encoding/json"

	"panelsmith/pkg/utils"
)

// PanelData is the text half of a single panel: a caption shown to readers
// and an English prompt for the image model.
type PanelData struct {
	Caption     string `json:"caption" jsonschema_description:"Short narrative caption or dialogue for the panel, written in the requested language"`
	ImagePrompt string `json:"imagePrompt" jsonschema_description:"Detailed English visual description of the panel for an image model, including the characters and the art style"`
}

// ScriptUnit is one panel of a multi-panel script.
type ScriptUnit struct {
	Description string `json:"description" jsonschema_description:"Visual description of what happens in this panel, in English"`
	Caption     string `json:"caption" jsonschema_description:"Caption or dialogue for this panel, written in the requested language"`
}

// Script is an ordered list of panels.
type Script []ScriptUnit

// ScriptEnvelope wraps a script for providers that only return JSON objects.
type ScriptEnvelope struct {
	Panels Script `json:"panels" jsonschema_description:"Panels of the comic in reading order"`
}

// Character is a reusable identity: a name, a prose description and an
// optional avatar image used as a visual reference.
type Character struct {
	ID          string
	Name        string
	Description string
	Avatar      []byte
	AvatarMIME  string
}

type characterJSON struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// MarshalJSON renders the avatar as a data URL.
func (c Character) MarshalJSON() ([]byte, error) {
	out := characterJSON{ID: c.ID, Name: c.Name, Description: c.Description}
	if len(c.Avatar) > 0 {
		out.ImageURL = utils.DataURL(c.AvatarMIME, c.Avatar)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the avatar as a base64 data URL.
func (c *Character) UnmarshalJSON(b []byte) error {
	var in characterJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*c = Character{ID: in.ID, Name: in.Name, Description: in.Description}
	if in.ImageURL == "" {
		return nil
	}
	data, mime, err := utils.DecodeDataURL(in.ImageURL)
	if err != nil {
		return err
	}
	c.Avatar, c.AvatarMIME = data, mime
	return nil
}

// HasAvatar reports whether the character carries a reference image.
func (c Character) HasAvatar() bool { return len(c.Avatar) > 0 }

// GeneratedImage is an opaque image payload as returned by the provider.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

func (g GeneratedImage) DataURL() string {
	return utils.DataURL(g.MIMEType, g.Data)
}
