package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/localization"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/ui"
	"github.com/mark3labs/llmprices/internal/view"
)

var providersCmd = &cobra.Command{
	Use:   "providers [id]",
	Short: "List providers and their models",
	Long: `List the providers in the price catalog and the models each one offers.

When a provider id is given, shows that provider's details and the prices
of its models.

Examples:
  llmprices providers
  llmprices providers anthropic
  llmprices providers zhipu --currency cny --language zh`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	cat, err := s.load(commandContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return printProvider(out, s, cat, args[0])
	}
	return printAllProviders(out, s, cat)
}

func printAllProviders(out io.Writer, s *session, cat *catalog.Catalog) error {
	ids := cat.ProviderIDs()
	if len(ids) == 0 {
		fmt.Fprintln(out, s.localizer.T(localization.MsgNoResults))
		return nil
	}

	for i, id := range ids {
		isLast := i == len(ids)-1
		branch := "├── "
		if isLast {
			branch = "└── "
		}
		name := cat.ProviderName(id)
		if name != id {
			name = fmt.Sprintf("%s (%s)", name, id)
		}
		fmt.Fprintf(out, "%s%s\n", branch, name)

		childPrefix := "│   "
		if isLast {
			childPrefix = "    "
		}

		names := sortedModelNames(cat.ModelsForProvider(id), s)
		for j, modelName := range names {
			modelBranch := "├── "
			if j == len(names)-1 {
				modelBranch = "└── "
			}
			fmt.Fprintf(out, "%s%s%s\n", childPrefix, modelBranch, modelName)
		}
	}

	return nil
}

func printProvider(out io.Writer, s *session, cat *catalog.Catalog, id string) error {
	models := cat.ModelsForProvider(id)
	provider, known := cat.Provider(id)
	if !known && len(models) == 0 {
		return fmt.Errorf("unknown provider %q. Run 'llmprices providers' to see all providers", id)
	}

	md := providerMarkdown(s, cat, provider, id)

	if isTerminal(out) {
		rendered, err := ui.RenderMarkdown(md, terminalWidth(out))
		if err != nil {
			return err
		}
		md = rendered
	}
	_, err := io.WriteString(out, md)
	return err
}

// providerMarkdown describes one provider: its metadata followed by the
// price table of its models in the session's currency and sort order.
func providerMarkdown(s *session, cat *catalog.Catalog, provider pricing.Provider, id string) string {
	l := s.localizer

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cat.ProviderName(id))
	if provider.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", provider.Description)
	}
	fmt.Fprintf(&b, "- **ID**: `%s`\n", id)
	if provider.Region != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", l.T(localization.MsgProviderRegion), provider.Region)
	}
	if provider.PricingURL != "" {
		fmt.Fprintf(&b, "- **%s**: %s\n", l.T(localization.MsgProviderPricing), provider.PricingURL)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l.T(localization.MsgProviderModels))

	opts := s.options
	opts.Query = view.Query{Provider: id}
	opts.GroupByProvider = false
	table := view.Build(cat, opts)

	r := ui.Renderer{Localizer: l}
	if table.Empty() {
		fmt.Fprintf(&b, "%s\n", l.T(localization.MsgNoResults))
		return b.String()
	}
	b.WriteString(r.MarkdownTables(table))
	fmt.Fprintf(&b, "_%s_\n", r.Footer(table))
	return b.String()
}

func sortedModelNames(models []pricing.Model, s *session) []string {
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	collate.New(s.localizer.Tag()).SortStrings(names)
	return names
}
