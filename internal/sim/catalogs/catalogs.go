// Package catalogs loads the static content shipped with the server: the
// palette of gear templates a client can drag onto the bench. Catalogs are
// digested so clients can cache them across reconnects.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gearbench/internal/sim/gears"
)

type Catalogs struct {
	Gears GearCatalog
}

type GearCatalog struct {
	Templates []GearTemplate
	ByID      map[string]GearTemplate
	Digest    string
}

// GearTemplate is one palette entry: the (kind, teeth, color) the pointer
// layer hands to AddGear when a drag commits.
type GearTemplate struct {
	ID    string     `json:"id"`
	Kind  gears.Kind `json:"kind"`
	Teeth int        `json:"teeth"`
	Color string     `json:"color"`
	Label string     `json:"label,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadGears(filepath.Join(configDir, "gear_palette.json"), &c.Gears); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadGears(path string, out *GearCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []GearTemplate
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("gear_palette.json: %w", err)
	}
	out.ByID = map[string]GearTemplate{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("gear_palette.json: empty id")
		}
		if !d.Kind.Valid() {
			return fmt.Errorf("gear_palette.json: %s: unknown kind %q", d.ID, d.Kind)
		}
		if d.Teeth <= 0 {
			return fmt.Errorf("gear_palette.json: %s: teeth must be positive", d.ID)
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("gear_palette.json: duplicate id %s", d.ID)
		}
		out.ByID[d.ID] = d
	}
	out.Templates = defs
	return nil
}

// Default returns the built-in palette used when no config dir is
// available (tests, embedded runs). Mirrors configs/gear_palette.json.
func Default() *Catalogs {
	defs := []GearTemplate{
		{ID: "MOTOR_12", Kind: gears.KindMotor, Teeth: 12, Color: "#e05c3a", Label: "Motor"},
		{ID: "SLOW_MOTOR_36", Kind: gears.KindSlowMotor, Teeth: 36, Color: "#b0413e", Label: "Giant motor"},
		{ID: "GEAR_8", Kind: gears.KindPlain, Teeth: 8, Color: "#f2b134", Label: "Small gear"},
		{ID: "GEAR_12", Kind: gears.KindPlain, Teeth: 12, Color: "#4a90d9", Label: "Gear"},
		{ID: "GEAR_16", Kind: gears.KindPlain, Teeth: 16, Color: "#3aa17e", Label: "Gear"},
		{ID: "GEAR_24", Kind: gears.KindPlain, Teeth: 24, Color: "#7d5ba6", Label: "Big gear"},
		{ID: "GEAR_40", Kind: gears.KindPlain, Teeth: 40, Color: "#5d6d7e", Label: "Huge gear"},
		{ID: "FLYWHEEL_32", Kind: gears.KindFlywheel, Teeth: 32, Color: "#8a8a8a", Label: "Flywheel"},
		{ID: "DECO_10", Kind: gears.KindDeco, Teeth: 10, Color: "#d9c4a0", Label: "Ornament"},
	}
	c := &Catalogs{Gears: GearCatalog{Templates: defs, ByID: map[string]GearTemplate{}}}
	for _, d := range defs {
		c.Gears.ByID[d.ID] = d
	}
	raw, _ := json.Marshal(defs)
	c.Gears.Digest = sha256Hex(raw)
	return c
}
