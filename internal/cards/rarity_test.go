package cards_test

import (
	"testing"

	"github.com/albapepper/pitchside/internal/cards"
)

func TestParseRarity(t *testing.T) {
	tests := map[string]cards.Rarity{
		"legendary": cards.Legendary,
		"UNIQUE":    cards.Unique,
		" Rare ":    cards.Rare,
		"common":    cards.Common,
		"mythic":    cards.Common,
		"":          cards.Common,
	}
	for in, want := range tests {
		if got := cards.ParseRarity(in); got != want {
			t.Errorf("ParseRarity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		rarity       cards.Rarity
		foil, shine  float64
		count        int
		roughness    float64
		rimGlow      bool
		emissiveGain float64
	}{
		{cards.Common, 0.12, 0.14, 130, 0.34, false, 0},
		{cards.Rare, 0.18, 0.19, 130, 0.22, false, 0},
		{cards.Unique, 0.38, 0.24, 170, 0.22, true, 0},
		{cards.Legendary, 0.26, 0.30, 150, 0.22, true, 0.25},
	}
	for _, tt := range tests {
		t.Run(string(tt.rarity), func(t *testing.T) {
			p := cards.Params(tt.rarity, 7, 50)
			if p.FoilStrength != tt.foil || p.ShineStrength != tt.shine {
				t.Errorf("foil/shine = %v/%v, want %v/%v", p.FoilStrength, p.ShineStrength, tt.foil, tt.shine)
			}
			if p.PatternCount != tt.count {
				t.Errorf("pattern count = %d, want %d", p.PatternCount, tt.count)
			}
			if p.Roughness != tt.roughness {
				t.Errorf("roughness = %v, want %v", p.Roughness, tt.roughness)
			}
			if p.RimGlow != tt.rimGlow || p.EmissiveIntensity != tt.emissiveGain {
				t.Errorf("glow = %v/%v", p.RimGlow, p.EmissiveIntensity)
			}
			if p.SerialLabel != "7/50" {
				t.Errorf("serial label = %q", p.SerialLabel)
			}
		})
	}
}

func TestParams_Defaults(t *testing.T) {
	p := cards.Params(cards.Rarity("bogus"), 0, -1)
	if p.Rarity != cards.Common {
		t.Errorf("rarity = %q, want common", p.Rarity)
	}
	if p.SerialLabel != "1/100" {
		t.Errorf("serial label = %q, want 1/100", p.SerialLabel)
	}
	if p.BackLabel != "COMMON • 1/100" {
		t.Errorf("back label = %q", p.BackLabel)
	}
	if p.Palette.Metal != "#c0c0c0" {
		t.Errorf("metal = %q", p.Palette.Metal)
	}
}

func TestWithRenders(t *testing.T) {
	in := []cards.Card{{Rarity: cards.Legendary, SerialNumber: 1, MaxSupply: 10}}
	out := cards.WithRenders(in)
	if out[0].Render == nil || out[0].Render.Palette.Metal != "#d4af37" {
		t.Fatalf("render = %+v", out[0].Render)
	}
	if in[0].Render != nil {
		t.Error("input slice must not be mutated")
	}
}
