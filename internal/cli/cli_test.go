package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/sentidash/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	registerDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Data.Path != "feedback.csv" {
		t.Errorf("Expected default data path, got %s", cfg.Data.Path)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL, got %v", cfg.Session.TTL)
	}
	if len(cfg.Highlights.Rankings) != 2 || cfg.Highlights.Rankings[1] != 5 {
		t.Errorf("Expected rankings [1 5], got %v", cfg.Highlights.Rankings)
	}
	if !strings.HasSuffix(cfg.Session.Dir, filepath.Join(configDirName, "sessions")) {
		t.Errorf("Expected session dir under %s, got %s", configDirName, cfg.Session.Dir)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	v := newTestViper(t)
	t.Setenv("SENTIDASH_DATA_PATH", "feedback.db")
	t.Setenv("SENTIDASH_CASCADE_CACHE_TTL", "1m")
	t.Setenv("SENTIDASH_HIGHLIGHTS_COUNT", "3")

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Data.Path != "feedback.db" {
		t.Errorf("Expected env data path, got %s", cfg.Data.Path)
	}
	if cfg.Cascade.CacheTTL != time.Minute {
		t.Errorf("Expected 1m cache TTL, got %v", cfg.Cascade.CacheTTL)
	}
	if cfg.Highlights.Count != 3 {
		t.Errorf("Expected highlight count 3, got %d", cfg.Highlights.Count)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := newTestViper(t)
	t.Setenv("SENTIDASH_OUTPUT_FORMAT", "pdf")

	if _, err := loadConfig(v); err == nil {
		t.Error("Expected validation error for unknown output format")
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	v := newTestViper(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Server.Addr != want.Server.Addr || cfg.Session.TTL != want.Session.TTL {
		t.Errorf("Round trip changed config: %+v", cfg.Server)
	}
}

func newSelectionCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSelectionFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cmd
}

func TestApplySelectionFlags(t *testing.T) {
	cmd := newSelectionCmd(t, "--brand", "Nissan,Toyota", "--fact", "Negative", "--from", "2024-01-01")
	base := model.Selection{Model: []string{"Leaf"}, ToDate: model.MustDate("2024-02-01")}

	sel, err := applySelectionFlags(cmd, base)
	if err != nil {
		t.Fatalf("applySelectionFlags failed: %v", err)
	}

	if len(sel.Brand) != 2 || sel.Brand[1] != "Toyota" {
		t.Errorf("Expected two brands, got %v", sel.Brand)
	}
	if len(sel.Model) != 1 || sel.Model[0] != "Leaf" {
		t.Errorf("Expected saved model to survive, got %v", sel.Model)
	}
	if sel.FromDate == nil || sel.FromDate.String() != "2024-01-01" {
		t.Errorf("Expected from date, got %v", sel.FromDate)
	}
	if sel.ToDate == nil || sel.ToDate.String() != "2024-02-01" {
		t.Errorf("Expected saved to date, got %v", sel.ToDate)
	}
	if len(base.Brand) != 0 {
		t.Error("Base selection must not be modified")
	}
}

func TestApplySelectionFlags_ClearDate(t *testing.T) {
	cmd := newSelectionCmd(t, "--to", "")
	sel, err := applySelectionFlags(cmd, model.Selection{ToDate: model.MustDate("2024-02-01")})
	if err != nil {
		t.Fatalf("applySelectionFlags failed: %v", err)
	}
	if sel.ToDate != nil {
		t.Errorf("Expected cleared to date, got %v", sel.ToDate)
	}
}

func TestApplySelectionFlags_BadDate(t *testing.T) {
	cmd := newSelectionCmd(t, "--from", "01/02/2024x")
	if _, err := applySelectionFlags(cmd, model.Selection{}); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestStaleLines_CascadeOrder(t *testing.T) {
	stale := map[model.Dimension][]string{
		model.DimSource: {"Fax"},
		model.DimFact:   {"Bogus"},
		model.DimBrand:  {"Tesla", "Rivian"},
		model.DimModel:  {},
	}
	want := []string{"brand: Tesla, Rivian", "fact: Bogus", "source: Fax"}

	for range 20 {
		got := staleLines(stale)
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Fatalf("staleLines = %v, want %v", got, want)
		}
	}
	if got := staleLines(nil); len(got) != 0 {
		t.Errorf("expected no lines for empty map, got %v", got)
	}
}
