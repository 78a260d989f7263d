package imagegen

import (
	"strings"
	"testing"
)

func TestBuildURL_Deterministic(t *testing.T) {
	params := Parameters{
		Prompt: "a red fox",
		Model:  "flux",
		Width:  1024,
		Height: 768,
	}
	seed := int64(42)

	first := BuildURL("https://example.com", "a red fox", params, &seed)
	second := BuildURL("https://example.com", "a red fox", params, &seed)

	if first != second {
		t.Errorf("identical inputs produced different URLs:\n%s\n%s", first, second)
	}

	want := "https://example.com/prompt/a%20red%20fox,model:flux?width=1024&height=768&seed=42&nologo=true"
	if first != want {
		t.Errorf("BuildURL = %s, want %s", first, want)
	}
}

func TestBuildURL_OmitsSeedWhenNil(t *testing.T) {
	params := Parameters{Prompt: "fox", Model: "flux", Width: 512, Height: 512}

	url := BuildURL("https://example.com", "fox", params, nil)

	if strings.Contains(url, "seed=") {
		t.Errorf("unseeded URL should carry no seed parameter: %s", url)
	}
	if !strings.Contains(url, "nologo=true") {
		t.Errorf("URL missing nologo parameter: %s", url)
	}
}

func TestBuildURL_EscapesPromptCharacters(t *testing.T) {
	params := Parameters{Prompt: "50% cooler fox?", Model: "flux", Width: 512, Height: 512}

	url := BuildURL("https://example.com/", "50% cooler fox?", params, nil)

	if strings.Contains(url, "50% ") {
		t.Errorf("percent sign not escaped: %s", url)
	}
	if !strings.Contains(url, "https://example.com/prompt/") {
		t.Errorf("trailing base slash not collapsed: %s", url)
	}
	// The question mark must not start the query string early.
	if got := strings.Count(url, "?"); got != 1 {
		t.Errorf("URL has %d unescaped question marks, want 1: %s", got, url)
	}
}

func TestNewFingerprint_IdenticalInputsAreEqual(t *testing.T) {
	params := Parameters{Prompt: "fox", Model: "flux", Width: 1024, Height: 1024, Seed: seedRef(7)}

	a := NewFingerprint(params, "fox")
	b := NewFingerprint(params, "fox")

	if a != b {
		t.Errorf("fingerprints differ for identical inputs: %v vs %v", a, b)
	}
}

func TestNewFingerprint_DistinguishesAbsentFields(t *testing.T) {
	base := Parameters{Prompt: "fox", Model: "flux", Width: 1024, Height: 1024}

	unseeded := NewFingerprint(base, "fox")

	seeded := base
	seeded.Seed = seedRef(0)
	if NewFingerprint(seeded, "fox") == unseeded {
		t.Error("seed 0 and no seed must not share a fingerprint")
	}

	styled := base
	styled.Style = "Anime"
	if NewFingerprint(styled, "fox, anime style, vibrant colors") == unseeded {
		t.Error("styled and unstyled submissions must not share a fingerprint")
	}
}

func TestNewFingerprint_PromptDelimitersCannotCollide(t *testing.T) {
	// A prompt containing the sentinel text must not collide with a
	// parameter set where the sentinel is genuine.
	a := NewFingerprint(Parameters{Prompt: "fox", Model: "flux|random", Width: 1, Height: 1}, "fox")
	b := NewFingerprint(Parameters{Prompt: "fox", Model: "flux", Width: 1, Height: 1, Seed: seedRef(1)}, "fox")

	if a == b {
		t.Error("structurally different parameter sets collided")
	}
}

func seedRef(v int64) *int64 { return &v }
