package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_PaletteFile(t *testing.T) {
	dir := t.TempDir()
	raw := `[
  {"id":"MOTOR_12","kind":"MOTOR","teeth":12,"color":"#e05c3a"},
  {"id":"GEAR_24","kind":"PLAIN","teeth":24,"color":"#7d5ba6"}
]`
	if err := os.WriteFile(filepath.Join(dir, "gear_palette.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Gears.Templates) != 2 || c.Gears.Digest == "" {
		t.Fatalf("catalog: %+v", c.Gears)
	}
	if tpl := c.Gears.ByID["GEAR_24"]; tpl.Teeth != 24 {
		t.Fatalf("lookup: %+v", tpl)
	}
}

func TestLoad_RejectsBadPalette(t *testing.T) {
	cases := map[string]string{
		"empty id":     `[{"id":"","kind":"PLAIN","teeth":8}]`,
		"unknown kind": `[{"id":"X","kind":"SPROCKET","teeth":8}]`,
		"zero teeth":   `[{"id":"X","kind":"PLAIN","teeth":0}]`,
		"duplicate id": `[{"id":"X","kind":"PLAIN","teeth":8},{"id":"X","kind":"PLAIN","teeth":12}]`,
	}
	for name, raw := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "gear_palette.json"), []byte(raw), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("%s: load succeeded", name)
		}
	}
}

func TestDefault_MatchesShippedPalette(t *testing.T) {
	c := Default()
	if len(c.Gears.Templates) == 0 || c.Gears.Digest == "" {
		t.Fatalf("default catalog: %+v", c.Gears)
	}
	for _, tpl := range c.Gears.Templates {
		if !tpl.Kind.Valid() || tpl.Teeth <= 0 {
			t.Fatalf("bad template: %+v", tpl)
		}
	}
	if _, ok := c.Gears.ByID["MOTOR_12"]; !ok {
		t.Fatalf("motor template missing")
	}
}
