// Package cards models collectible player cards and the cosmetic render
// parameters each rarity tier maps to. Rarity has no gameplay effect.
package cards

import (
	"fmt"
	"strings"
)

// Rarity is the cosmetic tier of a card.
type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Unique    Rarity = "unique"
	Legendary Rarity = "legendary"
)

// Rarities lists every tier from most to least common.
var Rarities = []Rarity{Common, Rare, Unique, Legendary}

// ParseRarity lower-cases v and falls back to Common for anything unknown.
func ParseRarity(v string) Rarity {
	switch r := Rarity(strings.ToLower(strings.TrimSpace(v))); r {
	case Rare, Unique, Legendary:
		return r
	default:
		return Common
	}
}

// Valid reports whether r is one of the four tiers.
func (r Rarity) Valid() bool {
	switch r {
	case Common, Rare, Unique, Legendary:
		return true
	}
	return false
}

// Palette is the colour set a tier is drawn with.
type Palette struct {
	Metal string `json:"metal"`
	A     string `json:"a"`
	B     string `json:"b"`
	Glow  string `json:"glow"`
}

// Palette returns the tier's colours.
func (r Rarity) Palette() Palette {
	switch r {
	case Legendary:
		return Palette{Metal: "#d4af37", A: "#fff2b3", B: "#f59e0b", Glow: "#ffd26a"}
	case Unique:
		return Palette{Metal: "#6d28d9", A: "#c4b5fd", B: "#22d3ee", Glow: "#a78bfa"}
	case Rare:
		return Palette{Metal: "#dc2626", A: "#fecaca", B: "#fb7185", Glow: "#fb7185"}
	default:
		return Palette{Metal: "#c0c0c0", A: "#f5f5f5", B: "#94a3b8", Glow: "#cbd5e1"}
	}
}

// Render holds every parameter a client needs to draw a card face, back,
// and material for a tier.
type Render struct {
	Rarity  Rarity  `json:"rarity"`
	Palette Palette `json:"palette"`

	// Background pattern
	PatternAlpha float64 `json:"patternAlpha"`
	PatternCount int     `json:"patternCount"`
	SparkleAlpha float64 `json:"sparkleAlpha"`
	OverlayAlpha float64 `json:"overlayAlpha"`

	// Shader overlays
	FoilStrength  float64 `json:"foilStrength"`
	ShineStrength float64 `json:"shineStrength"`

	// Body material
	Roughness         float64 `json:"roughness"`
	Emissive          string  `json:"emissive"`
	EmissiveIntensity float64 `json:"emissiveIntensity"`
	RimGlow           bool    `json:"rimGlow"`

	SerialLabel string `json:"serialLabel"`
	BackLabel   string `json:"backLabel"`
}

const (
	defaultSerial    = 1
	defaultMaxSupply = 100
)

// Params computes render parameters. Non-positive serial or maxSupply fall
// back to 1 and 100.
func Params(r Rarity, serial, maxSupply int) Render {
	if !r.Valid() {
		r = Common
	}
	if serial <= 0 {
		serial = defaultSerial
	}
	if maxSupply <= 0 {
		maxSupply = defaultMaxSupply
	}

	p := Render{
		Rarity:            r,
		Palette:           r.Palette(),
		PatternAlpha:      0.30,
		PatternCount:      130,
		SparkleAlpha:      0.07,
		OverlayAlpha:      0.10,
		Roughness:         0.22,
		Emissive:          "#000000",
		EmissiveIntensity: 0,
		SerialLabel:       fmt.Sprintf("%d/%d", serial, maxSupply),
	}
	p.BackLabel = fmt.Sprintf("%s • %s", strings.ToUpper(string(r)), p.SerialLabel)

	switch r {
	case Common:
		p.PatternAlpha = 0.22
		p.Roughness = 0.34
		p.FoilStrength = 0.12
		p.ShineStrength = 0.14
	case Rare:
		p.FoilStrength = 0.18
		p.ShineStrength = 0.19
	case Unique:
		p.PatternCount = 170
		p.SparkleAlpha = 0.11
		p.OverlayAlpha = 0.16
		p.FoilStrength = 0.38
		p.ShineStrength = 0.24
		p.RimGlow = true
	case Legendary:
		p.PatternCount = 150
		p.FoilStrength = 0.26
		p.ShineStrength = 0.30
		p.Emissive = "#7c5c12"
		p.EmissiveIntensity = 0.25
		p.RimGlow = true
	}
	return p
}

// DefaultMaxSupply is the mint cap of a tier when none is given.
func DefaultMaxSupply(r Rarity) int {
	switch r {
	case Legendary:
		return 1
	case Unique:
		return 10
	case Rare:
		return 100
	default:
		return 1000
	}
}
