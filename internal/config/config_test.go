package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/view"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != pricing.CNY {
		t.Errorf("Currency = %s, want CNY", s.Currency)
	}
	if s.ExchangeRate != pricing.DefaultExchangeRate {
		t.Errorf("ExchangeRate = %v", s.ExchangeRate)
	}
	if s.Sort != view.SortInputAsc {
		t.Errorf("Sort = %s, want input-asc", s.Sort)
	}
	if s.Provider != view.AllProviders || s.Source != "embedded" || s.Group || s.Static {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown currency", KeyCurrency, "eur"},
		{"zero rate", KeyExchangeRate, 0.0},
		{"negative rate", KeyExchangeRate, -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			SetDefaults()
			viper.Set(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("expected an error for %s=%v", tt.key, tt.val)
			}
		})
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set(KeyCurrency, "RMB")
	viper.Set(KeySort, "bogus")
	viper.Set(KeyFormat, " JSON ")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != pricing.CNY {
		t.Errorf("Currency = %s, want CNY", s.Currency)
	}
	if s.Sort != view.DefaultSort {
		t.Errorf("Sort = %s, want fallback %s", s.Sort, view.DefaultSort)
	}
	if s.Format != "json" {
		t.Errorf("Format = %q", s.Format)
	}
}

func TestLoadFileExpandsEnvRefs(t *testing.T) {
	resetViper(t)
	SetDefaults()
	t.Setenv("LLMPRICES_TEST_CURRENCY", "usd")

	path := filepath.Join(t.TempDir(), "config.yml")
	content := "currency: ${env://LLMPRICES_TEST_CURRENCY}\nexchange-rate: 6.9\ngroup: true\nsort: ${env://LLMPRICES_TEST_SORT:-output-desc}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LoadFile(path); err != nil {
		t.Fatal(err)
	}
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != pricing.USD || s.ExchangeRate != 6.9 || !s.Group || s.Sort != view.SortOutputDesc {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestLoadFileJSON(t *testing.T) {
	resetViper(t)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": "openai", "language": "zh"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path); err != nil {
		t.Fatal(err)
	}
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Provider != "openai" || s.Language != "zh" {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestLoadFileMissingEnv(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("source: ${env://LLMPRICES_TEST_UNSET_SOURCE}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path); err == nil {
		t.Error("expected an error for an unset variable without default")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(first, []byte("LLMPRICES_TEST_DOTENV=first\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("LLMPRICES_TEST_DOTENV=second\nLLMPRICES_TEST_DOTENV_EXTRA=x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("LLMPRICES_TEST_DOTENV")
		_ = os.Unsetenv("LLMPRICES_TEST_DOTENV_EXTRA")
	})

	loaded := LoadEnvFiles(first, filepath.Join(dir, "missing.env"), second)
	if len(loaded) != 2 {
		t.Fatalf("loaded %v, want both existing files", loaded)
	}
	if got := os.Getenv("LLMPRICES_TEST_DOTENV"); got != "first" {
		t.Errorf("earlier file should win, got %q", got)
	}
	if got := os.Getenv("LLMPRICES_TEST_DOTENV_EXTRA"); got != "x" {
		t.Errorf("later file should still add new keys, got %q", got)
	}
}

func TestEnvOverride(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	t.Setenv("LLMPRICES_CURRENCY", "usd")

	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != pricing.USD {
		t.Errorf("Currency = %s, want USD from the environment", s.Currency)
	}
}
