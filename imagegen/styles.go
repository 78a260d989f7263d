package imagegen

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style is a named preset whose descriptor text is appended to the user's
// prompt when active.
type Style struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// StyleSet holds the available style presets in display order.
type StyleSet struct {
	styles []Style
}

// BuiltinStyles returns the default preset set.
func BuiltinStyles() *StyleSet {
	return &StyleSet{styles: []Style{
		{Name: "Realistic", Prompt: "realistic, highly detailed, 8k"},
		{Name: "Anime", Prompt: "anime style, vibrant colors"},
		{Name: "Watercolor", Prompt: "watercolor painting, artistic"},
		{Name: "Cyberpunk", Prompt: "cyberpunk style, neon lights"},
		{Name: "Minimalist", Prompt: "minimalist, simple, clean"},
		{Name: "Fantasy", Prompt: "fantasy art, magical, dreamy"},
	}}
}

// LoadStyles reads style presets from a YAML file:
//
//	- name: Realistic
//	  prompt: realistic, highly detailed, 8k
//	- name: Sketch
//	  prompt: pencil sketch, monochrome
//
// The file replaces the built-in set entirely.
func LoadStyles(path string) (*StyleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imagegen: failed to read styles file: %w", err)
	}

	var styles []Style
	if err := yaml.Unmarshal(data, &styles); err != nil {
		return nil, fmt.Errorf("imagegen: failed to parse styles file %s: %w", path, err)
	}

	for i, s := range styles {
		if s.Name == "" {
			return nil, fmt.Errorf("imagegen: styles file %s: entry %d has no name", path, i)
		}
	}

	return &StyleSet{styles: styles}, nil
}

// LoadStylesOrBuiltin loads presets from path, or returns the built-in
// set when path is empty.
func LoadStylesOrBuiltin(path string) (*StyleSet, error) {
	if path == "" {
		return BuiltinStyles(), nil
	}
	return LoadStyles(path)
}

// Styles returns the presets in display order.
func (s *StyleSet) Styles() []Style {
	out := make([]Style, len(s.styles))
	copy(out, s.styles)
	return out
}

// Lookup returns the preset with the given name, case-insensitively.
func (s *StyleSet) Lookup(name string) (Style, bool) {
	for _, st := range s.styles {
		if strings.EqualFold(st.Name, name) {
			return st, true
		}
	}
	return Style{}, false
}

// EffectivePrompt computes the prompt actually sent to the service: the
// user prompt with the active style's descriptor appended. The stored
// prompt is never modified. Returns an UnknownStyleError if the named
// style does not exist.
func (s *StyleSet) EffectivePrompt(p Parameters) (string, error) {
	prompt := strings.TrimSpace(p.Prompt)
	if p.Style == "" {
		return prompt, nil
	}

	style, ok := s.Lookup(p.Style)
	if !ok {
		return "", &UnknownStyleError{Name: p.Style}
	}

	if prompt == "" {
		return style.Prompt, nil
	}
	return prompt + ", " + style.Prompt, nil
}
