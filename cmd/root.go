package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/config"
	"github.com/mark3labs/llmprices/internal/localization"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/ui"
	"github.com/mark3labs/llmprices/internal/view"
)

var (
	configFile string
	debugMode  bool
)

// rootCmd shows the price table, interactively when stdout is a terminal.
var rootCmd = &cobra.Command{
	Use:   "llmprices",
	Short: "Compare large language model pricing in the terminal",
	Long: `Compare input, output and cached-token prices of large language models.

Prices are shown per million tokens, in USD or CNY at a fixed exchange rate.
Models billed with context-length tiers get one row per tier.

When stdout is a terminal an interactive table starts; use --static or
--format to print once and exit.

Examples:
  llmprices
  llmprices --currency usd --sort output-asc
  llmprices --provider anthropic --format markdown
  llmprices --source https://example.com/data --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPrices(commandContext(cmd), cmd.OutOrStdout())
	},
}

// GetRootCommand returns the root command with the version set.
func GetRootCommand(v string) *cobra.Command {
	rootCmd.Version = v
	return rootCmd
}

// InitConfig loads .env files, the config file and environment overrides.
// It runs before every command.
func InitConfig() {
	if debugMode {
		log.SetLevel(log.DebugLevel)
	}
	if err := config.Init(configFile, debugMode); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if viper.GetBool(config.KeyDebug) {
		log.SetLevel(log.DebugLevel)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	log.SetOutput(os.Stderr)

	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&configFile, "config", "", "config file (default is ./.llmprices.yml, then $HOME/.llmprices.yml)")
	pflags.BoolVar(&debugMode, config.KeyDebug, false, "enable debug logging")
	pflags.String(config.KeySource, catalog.EmbeddedSourceName,
		"base URL or directory holding models.json and providers.json, or 'embedded'")
	pflags.StringP(config.KeyLanguage, "l", "en", "interface language (en, zh)")
	pflags.String(config.KeyCurrency, string(pricing.CNY), "display currency (usd, cny)")
	pflags.Float64(config.KeyExchangeRate, pricing.DefaultExchangeRate, "CNY per USD")
	pflags.StringP(config.KeySort, "s", string(view.DefaultSort),
		"sort order (name, input-asc, input-desc, output-asc, output-desc)")
	pflags.String(config.KeyUnifiedLabel, "", "tier label of models with a single price (default is localized)")

	flags := rootCmd.Flags()
	flags.StringP(config.KeyProvider, "p", view.AllProviders, "only show models of this provider id")
	flags.StringP(config.KeySearch, "q", "", "only show models whose name or provider contains this text")
	flags.BoolP(config.KeyGroup, "g", false, "group rows by provider")
	flags.StringP(config.KeyFormat, "f", "", "print once in this format ("+ui.FormatList()+")")
	flags.Bool(config.KeyStatic, false, "print the table once instead of starting the interactive view")

	for _, key := range []string{
		config.KeyDebug, config.KeySource, config.KeyLanguage,
		config.KeyCurrency, config.KeyExchangeRate, config.KeySort, config.KeyUnifiedLabel,
	} {
		_ = viper.BindPFlag(key, pflags.Lookup(key))
	}
	for _, key := range []string{
		config.KeyProvider, config.KeySearch, config.KeyGroup, config.KeyFormat, config.KeyStatic,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

// session is everything a command needs once settings are resolved.
type session struct {
	settings  config.Settings
	localizer *localization.Localizer
	loader    *catalog.Loader
	options   view.Options
}

func newSession() (*session, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	bundle, err := localization.NewBundle()
	if err != nil {
		return nil, err
	}
	l := bundle.Localizer(settings.Language)

	conv, err := pricing.NewConverter(settings.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.KeyExchangeRate, err)
	}

	src, err := catalog.ResolveSource(settings.Source, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.KeySource, err)
	}

	label := settings.UnifiedLabel
	if label == "" {
		label = l.T(localization.MsgUnifiedPricing)
	}

	return &session{
		settings:  settings,
		localizer: l,
		loader:    catalog.NewLoader(src),
		options: view.Options{
			Query:           view.Query{Search: settings.Search, Provider: settings.Provider},
			Sort:            settings.Sort,
			GroupByProvider: settings.Group,
			Display:         settings.Currency,
			Converter:       conv,
			Normalizer:      pricing.Normalizer{UnifiedLabel: label},
			Language:        l.Tag(),
		},
	}, nil
}

// load fetches the catalog, showing a spinner on stderr when it is a
// terminal.
func (s *session) load(ctx context.Context) (*catalog.Catalog, error) {
	if isTerminal(os.Stderr) {
		sp := ui.NewSpinner(os.Stderr, s.localizer.T(localization.MsgLoading))
		sp.Start()
		defer sp.Stop()
	}

	cat, err := s.loader.Load(ctx)
	if err != nil {
		return nil, s.loadFailed(err)
	}
	return cat, nil
}

func (s *session) loadFailed(err error) error {
	return &loadFailure{
		msg: s.localizer.Tf(localization.MsgLoadFailed, map[string]any{"Error": err.Error()}),
		err: err,
	}
}

// loadFailure is a load error worded in the user's language. The cause stays
// reachable through errors.As.
type loadFailure struct {
	msg string
	err error
}

func (e *loadFailure) Error() string { return e.msg }
func (e *loadFailure) Unwrap() error { return e.err }

// commandContext returns the command's context, which is nil when the
// command was not started through ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runPrices(ctx context.Context, out io.Writer) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	format, err := ui.ParseFormat(s.settings.Format)
	if err != nil {
		return err
	}

	if s.settings.Format == "" && !s.settings.Static && isTerminal(os.Stdout) && out == os.Stdout {
		return runInteractive(ctx, s)
	}

	cat, err := s.load(ctx)
	if err != nil {
		return err
	}

	r := ui.Renderer{
		Localizer: s.localizer,
		Width:     terminalWidth(out),
		Styled:    isTerminal(out),
	}
	return r.Render(out, view.Build(cat, s.options), format)
}

func runInteractive(ctx context.Context, s *session) error {
	model := ui.NewPriceTable(ctx, s.loader.Load, s.localizer, s.options)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("interactive view failed: %w", err)
	}

	if pt, ok := final.(*ui.PriceTable); ok && pt.Err() != nil {
		return s.loadFailed(pt.Err())
	}
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when w is not a terminal.
func terminalWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
