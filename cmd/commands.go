package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"panelsmith/pkg/creative"
	"panelsmith/pkg/provider"
	"panelsmith/pkg/schema"
	"panelsmith/pkg/utils"
)

var (
	language       string
	style          string
	persona        string
	panels         int
	charactersFile string
	outputFile     string
	outputDir      string
)

func loadCharacters() ([]schema.Character, error) {
	if charactersFile == "" {
		return nil, nil
	}
	chars, err := utils.Load[[]schema.Character](charactersFile)
	if err != nil {
		return nil, fmt.Errorf("load characters %s: %w", charactersFile, err)
	}
	log.Info("loaded characters", "count", len(chars), "avatars", countAvatars(chars))
	return chars, nil
}

func countAvatars(chars []schema.Character) int {
	var n int
	for _, c := range chars {
		if c.HasAvatar() {
			n++
		}
	}
	return n
}

func output(v any) error {
	if outputFile == "" {
		fmt.Println(utils.PrettyJSON(v))
		return nil
	}
	if err := utils.Save(outputFile, v); err != nil {
		return err
	}
	log.Info("saved", "path", outputFile)
	return nil
}

var enhanceCmd = &cobra.Command{
	Use:   "enhance <idea>",
	Short: "Expand a short idea into a detailed scene",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idea := strings.Join(args, " ")
		out, err := st.Pipeline.EnhancePrompt(cmd.Context(), idea, schema.ParseLanguage(language))
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var panelCmd = &cobra.Command{
	Use:   "panel <scene>",
	Short: "Generate the caption and image prompt for one panel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chars, err := loadCharacters()
		if err != nil {
			return err
		}
		data, err := st.Pipeline.GeneratePanelText(cmd.Context(), creative.PanelRequest{
			Scene:      strings.Join(args, " "),
			Characters: chars,
			Style:      schema.Style(style),
			Language:   schema.Language(language),
		})
		if err != nil {
			return err
		}
		return output(data)
	},
}

func scriptRequest(args []string, chars []schema.Character) creative.ScriptRequest {
	return creative.ScriptRequest{
		Story:      strings.Join(args, " "),
		NumPanels:  panels,
		Language:   schema.Language(language),
		Persona:    persona,
		Style:      schema.Style(style),
		Characters: chars,
	}
}

var scriptCmd = &cobra.Command{
	Use:   "script <story>",
	Short: "Break a story into an ordered panel script",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chars, err := loadCharacters()
		if err != nil {
			return err
		}
		script, err := st.Pipeline.GenerateScript(cmd.Context(), scriptRequest(args, chars))
		if err != nil {
			return err
		}
		return output(schema.ScriptEnvelope{Panels: script})
	},
}

var storyCmd = &cobra.Command{
	Use:   "story <story>",
	Short: "Generate a script and render every panel to disk",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		chars, err := loadCharacters()
		if err != nil {
			return err
		}
		script, err := st.Pipeline.GenerateScript(ctx, scriptRequest(args, chars))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
		if err := utils.Save(filepath.Join(outputDir, "script.json"), schema.ScriptEnvelope{Panels: script}); err != nil {
			return err
		}

		results, err := st.Story.Render(ctx, script, chars, st.Synth.Defaults(), func(r creative.PanelResult) {
			if !r.OK() {
				return
			}
			ext := cmp.Or(strings.TrimPrefix(r.Image.MIMEType, "image/"), "png")
			path := filepath.Join(outputDir, fmt.Sprintf("panel_%02d.%s", r.Index+1, ext))
			if err := os.WriteFile(path, r.Image.Data, 0o644); err != nil {
				log.Error("write panel", "path", path, "error", err)
				return
			}
			log.Info("panel saved", "path", path)
		})
		var failed int
		for _, r := range results {
			if !r.OK() {
				failed++
			}
		}
		log.Info("story finished", "panels", len(script), "rendered", len(results)-failed, "failed", failed)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [provider...]",
	Short: "Check the configured credentials against each provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := provider.All
		if len(args) > 0 {
			ids = nil
			for _, a := range args {
				id, err := provider.Parse(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
		}
		var invalid []string
		for _, id := range ids {
			key, ok := st.Registry.Credential(id)
			if !ok {
				log.Warn("no credential", "provider", id)
				continue
			}
			if !st.Validator.Validate(cmd.Context(), id, key) {
				invalid = append(invalid, string(id))
			}
		}
		if len(invalid) > 0 {
			return errors.New("invalid credentials: " + strings.Join(invalid, ", "))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{enhanceCmd, panelCmd, scriptCmd, storyCmd} {
		c.Flags().StringVarP(&language, "language", "l", "en", "output language (en, ro, ru)")
	}
	for _, c := range []*cobra.Command{panelCmd, scriptCmd, storyCmd} {
		c.Flags().StringVarP(&style, "style", "s", string(schema.StyleComicBook), "art style")
		c.Flags().StringVarP(&charactersFile, "characters", "c", "", "JSON file with an array of characters")
	}
	for _, c := range []*cobra.Command{scriptCmd, storyCmd} {
		c.Flags().IntVarP(&panels, "panels", "p", 0, "number of panels (default from config)")
		c.Flags().StringVar(&persona, "persona", "", "writer persona for the script")
	}
	panelCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON to this file instead of stdout")
	scriptCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write JSON to this file instead of stdout")
	storyCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "output", "directory for the script and panel images")
}
