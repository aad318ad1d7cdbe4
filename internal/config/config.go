// Package config resolves the application settings from flags, the
// environment, .env files and an optional .llmprices config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/view"
)

// EnvPrefix prefixes every environment override, e.g. LLMPRICES_CURRENCY.
const EnvPrefix = "LLMPRICES"

// configName is searched for in the working directory and then $HOME.
const configName = ".llmprices"

// Setting keys. Flags are bound under the same names.
const (
	KeySource       = "source"
	KeyCurrency     = "currency"
	KeyExchangeRate = "exchange-rate"
	KeySort         = "sort"
	KeyProvider     = "provider"
	KeySearch       = "search"
	KeyGroup        = "group"
	KeyFormat       = "format"
	KeyLanguage     = "language"
	KeyUnifiedLabel = "unified-label"
	KeyStatic       = "static"
	KeyDebug        = "debug"
)

// Settings is the resolved configuration.
type Settings struct {
	Source       string
	Currency     pricing.Currency
	ExchangeRate float64
	Sort         view.SortKey
	Provider     string
	Search       string
	Group        bool
	// Format is empty when the user asked for no particular output format.
	Format   string
	Language string
	// UnifiedLabel overrides the localized label of single-tier models.
	UnifiedLabel string
	Static       bool
	Debug        bool
}

// SetDefaults registers the default of every setting.
func SetDefaults() {
	viper.SetDefault(KeySource, catalog.EmbeddedSourceName)
	viper.SetDefault(KeyCurrency, string(pricing.CNY))
	viper.SetDefault(KeyExchangeRate, pricing.DefaultExchangeRate)
	viper.SetDefault(KeySort, string(view.DefaultSort))
	viper.SetDefault(KeyProvider, view.AllProviders)
	viper.SetDefault(KeySearch, "")
	viper.SetDefault(KeyGroup, false)
	viper.SetDefault(KeyFormat, "")
	viper.SetDefault(KeyLanguage, "en")
	viper.SetDefault(KeyUnifiedLabel, "")
	viper.SetDefault(KeyStatic, false)
	viper.SetDefault(KeyDebug, false)
}

// Init loads .env files, then the config file, and enables environment
// overrides. configFile may be empty to search the default locations.
func Init(configFile string, debug bool) error {
	for _, f := range LoadEnvFiles(".env", ".env.local") {
		log.Debug("loaded env file", "path", f)
	}

	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		return LoadFile(configFile)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error finding home directory: %w", err)
	}

	// Current directory has higher priority than home directory.
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.SetConfigName(configName)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if debug {
				log.Debug("no config file found in current directory or home directory")
			}
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return LoadFile(viper.ConfigFileUsed())
}

// LoadFile reads a YAML or JSON config file, expanding ${env://VAR}
// references first.
func LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(raw)
	if HasEnvRefs(content) {
		content, err = Expander{}.Expand(content)
		if err != nil {
			return fmt.Errorf("error reading config file '%s': %w", path, err)
		}
	}

	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}

	viper.SetConfigType(configType)
	if err := viper.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	log.Debug("loaded config file", "path", path)
	return nil
}

// LoadEnvFiles loads the given .env files that exist, in order. Variables
// already present in the environment are never overwritten, so earlier
// files and the real environment win. It returns the files loaded.
func LoadEnvFiles(files ...string) []string {
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn("skipping env file", "path", f, "err", err)
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}

// Load materializes and validates the settings from viper.
func Load() (Settings, error) {
	currency, err := pricing.ParseCurrency(viper.GetString(KeyCurrency))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", KeyCurrency, err)
	}

	rate := viper.GetFloat64(KeyExchangeRate)
	if rate <= 0 {
		return Settings{}, fmt.Errorf("invalid %s: must be positive, got %v", KeyExchangeRate, rate)
	}

	return Settings{
		Source:       strings.TrimSpace(viper.GetString(KeySource)),
		Currency:     currency,
		ExchangeRate: rate,
		Sort:         view.ParseSortKey(viper.GetString(KeySort)),
		Provider:     strings.TrimSpace(viper.GetString(KeyProvider)),
		Search:       viper.GetString(KeySearch),
		Group:        viper.GetBool(KeyGroup),
		Format:       strings.ToLower(strings.TrimSpace(viper.GetString(KeyFormat))),
		Language:     viper.GetString(KeyLanguage),
		UnifiedLabel: viper.GetString(KeyUnifiedLabel),
		Static:       viper.GetBool(KeyStatic),
		Debug:        viper.GetBool(KeyDebug),
	}, nil
}
