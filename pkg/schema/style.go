package schema

import "strings"

type Style string

const (
	StyleComicBook  Style = "comic-book"
	StyleAnime      Style = "anime"
	StyleRealistic  Style = "realistic"
	StyleBlackWhite Style = "black-white"
	StylePixel      Style = "pixel"
	StyleWatercolor Style = "watercolor"
	StyleCyberpunk  Style = "cyberpunk"
	StyleSteampunk  Style = "steampunk"
	Style3DRender   Style = "3d-render"
	StyleSketch     Style = "sketch"
	StyleRetro80s   Style = "retro-80s"
	StyleFlatArt    Style = "flat-art"
)

var Styles = []Style{
	StyleComicBook, StyleAnime, StyleRealistic, StyleBlackWhite, StylePixel, StyleWatercolor,
	StyleCyberpunk, StyleSteampunk, Style3DRender, StyleSketch, StyleRetro80s, StyleFlatArt,
}

var stylePrompts = map[Style]string{
	StyleComicBook:  "Modern American comic book style, bold lines, vibrant colors, dynamic shading",
	StyleAnime:      "Anime style, cel shaded, vibrant, Studio Ghibli inspired details",
	StyleRealistic:  "Cinematic realistic photography, 8k, highly detailed, dramatic lighting",
	StyleBlackWhite: "Noir comic style, black and white, high contrast ink lines, Sin City style",
	StylePixel:      "Pixel art style, 16-bit retro game aesthetic",
	StyleWatercolor: "Watercolor painting style, soft edges, artistic, pastel colors",
	StyleCyberpunk:  "Cyberpunk style, neon lighting, rain-slick streets, high-tech dystopian city",
	StyleSteampunk:  "Steampunk style, brass and copper machinery, Victorian fashion, sepia tones",
	Style3DRender:   "3D render style, Pixar-like characters, soft global illumination, octane render",
	StyleSketch:     "Pencil sketch style, graphite shading, rough hand-drawn lines on paper",
	StyleRetro80s:   "Retro 1980s style, synthwave palette, VHS grain, airbrushed poster art",
	StyleFlatArt:    "Flat vector illustration style, simple shapes, limited palette, no gradients",
}

var styleAliases = map[string]Style{
	"noir":       StyleBlackWhite,
	"comic":      StyleComicBook,
	"3d":         Style3DRender,
	"flat":       StyleFlatArt,
	"retro":      StyleRetro80s,
	"bw":         StyleBlackWhite,
	"pixel-art":  StylePixel,
	"comicbook":  StyleComicBook,
	"watercolor": StyleWatercolor,
}

// ParseStyle resolves a style keyword or alias. Unknown values fall back to
// the comic-book style.
func ParseStyle(s string) Style {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := stylePrompts[Style(key)]; ok {
		return Style(key)
	}
	if style, ok := styleAliases[key]; ok {
		return style
	}
	return StyleComicBook
}

// Prompt returns the prose phrase injected into prompts for this style.
func (s Style) Prompt() string {
	return StylePrompt(s)
}

// StylePrompt maps a style keyword to its prose phrase.
func StylePrompt(s Style) string {
	return stylePrompts[ParseStyle(string(s))]
}
