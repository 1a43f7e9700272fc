package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(f, []byte(body), 0o644); err != nil { t.Fatalf("write: %v", err) }
	return f
}

func TestLoad_Defaults(t *testing.T) {
	f := writeConfig(t, "SHEET:\n  url: https://docs.google.com/spreadsheets/d/e/x/pub?output=csv\n")
	c, err := Load(f)
	if err != nil { t.Fatalf("load: %v", err) }
	if c.Sheet.Format != "csv" { t.Fatalf("format=%q want csv", c.Sheet.Format) }
	if c.PageSize != 12 || c.ContentDir != "src/content" { t.Fatalf("defaults not applied: %+v", c) }
	if c.Database.Type != "sqlite" || c.Database.DSN == "" { t.Fatalf("db defaults not applied: %+v", c.Database) }
	if c.Fetch.Retry != 0 || c.Fetch.TimeoutDuration() != 30*time.Second { t.Fatalf("fetch defaults: %+v", c.Fetch) }
	if c.LogFormat == "" || c.LogLocale == "" || c.LogColor == "" { t.Fatalf("log defaults missing") }
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"missing url":    "SHEET: {}\n",
		"relative url":   "SHEET:\n  url: /pub?output=csv\n",
		"bad format":     "SHEET:\n  url: https://x/y\n  format: ods\n",
		"negative page":  "SKIP_SHEET: true\nPAGE_SIZE: -1\n",
		"bad database":   "SKIP_SHEET: true\nDATABASE:\n  type: postgres\n",
		"negative fetch": "SKIP_SHEET: true\nFETCH:\n  timeout: -5\n",
		"bad yaml":       "SHEET: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expect error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file: expect error")
	}
}

func TestLoad_SkipSheetAndFormat(t *testing.T) {
	c, err := Load(writeConfig(t, "SKIP_SHEET: true\nSHEET:\n  format: XLSX\n  sheet: Tools\nPAGE_SIZE: 5\nSIMPLE_MODE: true\n"))
	if err != nil { t.Fatalf("load: %v", err) }
	if c.Sheet.Format != "xlsx" || c.Sheet.Name != "Tools" { t.Fatalf("sheet=%+v", c.Sheet) }
	if c.PageSize != 5 || !c.SimpleMode { t.Fatalf("unexpected: %+v", c) }
}
