package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/llmprices/internal/localization"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/view"
)

// Format is a static output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown}

// FormatList joins the format names for help and error messages.
func FormatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a format name. The empty string means FormatTable.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, s, FormatList())
	}
}

// dateLayout is used for the catalog's last update time.
const dateLayout = "2006-01-02"

// Renderer writes a presentation table in one of the static formats.
type Renderer struct {
	Localizer *localization.Localizer
	// Width caps the table width. Zero leaves it unconstrained.
	Width int
	// Styled renders Markdown through glamour instead of emitting it raw.
	Styled bool
}

// Render writes t to w. JSON and YAML always dump the table, even when it
// is empty; the human formats print the "no results" message instead.
func (r Renderer) Render(w io.Writer, t view.Table, f Format) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, t)
	case FormatYAML:
		return writeYAML(w, t)
	}

	if t.Empty() {
		_, err := lipgloss.Fprintln(w, StyleMuted(GetTheme()).Render(r.Localizer.T(localization.MsgNoResults)))
		return err
	}

	if f == FormatMarkdown {
		md := r.Markdown(t)
		if r.Styled {
			rendered, err := RenderMarkdown(md, r.Width)
			if err != nil {
				return err
			}
			md = rendered
		}
		_, err := io.WriteString(w, md)
		return err
	}

	_, err := lipgloss.Fprintln(w, r.Table(t))
	return err
}

func writeJSON(w io.Writer, t view.Table) error {
	data, err := sonic.ConfigStd.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode table as JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeYAML(w io.Writer, t view.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode table as YAML: %w", err)
	}
	return enc.Close()
}

// Headers returns the localized column headers. The price unit is printed
// once, in the footer.
func (r Renderer) Headers() []string {
	l := r.Localizer
	return []string{
		l.T(localization.MsgColumnModel),
		l.T(localization.MsgColumnProvider),
		l.T(localization.MsgColumnBilling),
		l.T(localization.MsgColumnTier),
		l.T(localization.MsgColumnInput),
		l.T(localization.MsgColumnOutput),
		l.T(localization.MsgColumnCachedIn),
		l.T(localization.MsgColumnCachedOut),
	}
}

// priceColumn is the index of the first price column.
const priceColumn = 4

// Cells formats one row. Model, provider and billing currency are only
// printed on a model's first tier.
func Cells(row view.Row, display pricing.Currency) []string {
	var model, provider, billing string
	if row.First {
		model, provider, billing = row.Model, row.Provider, string(row.BillingCurrency)
	}
	return []string{
		model,
		provider,
		billing,
		row.Tier,
		pricing.FormatPrice(row.Input, display),
		pricing.FormatPrice(row.Output, display),
		pricing.FormatOptionalPrice(row.CachedInput, display),
		pricing.FormatOptionalPrice(row.CachedOutput, display),
	}
}

// Footer is the price unit and the exchange rate, followed by the update
// date when the catalog carries one.
func (r Renderer) Footer(t view.Table) string {
	parts := []string{
		r.Localizer.Tf(localization.MsgPriceUnit, map[string]any{"Symbol": t.Display.Symbol()}),
		r.Localizer.Tf(localization.MsgExchangeRate, map[string]any{
			"Rate": strconv.FormatFloat(t.ExchangeRate, 'f', -1, 64),
		}),
	}
	if !t.UpdatedAt.IsZero() {
		parts = append(parts, r.Localizer.Tf(localization.MsgUpdatedAt, map[string]any{
			"Date": t.UpdatedAt.Format(dateLayout),
		}))
	}
	return strings.Join(parts, " · ")
}

// Table renders t with lipgloss: a title and caption, the grid, and the
// footer.
func (r Renderer) Table(t view.Table) string {
	theme := GetTheme()

	var b strings.Builder
	b.WriteString(StyleHeader(theme).Render(r.Localizer.T(localization.MsgTitle)))
	b.WriteString("\n")
	b.WriteString(StyleMuted(theme).Render(r.Localizer.T(localization.MsgCaption)))
	b.WriteString("\n")
	b.WriteString(r.Grid(t))
	b.WriteString("\n")
	b.WriteString(StyleMuted(theme).Render(r.Footer(t)))
	return b.String()
}

// Grid renders the bordered table alone, with a title row opening each
// provider section. Cells never wrap, so every tier stays on one line.
func (r Renderer) Grid(t view.Table) string {
	theme := GetTheme()
	headers := r.Headers()

	// Per rendered row: the section title flag and the provider id.
	var (
		titleRows = map[int]bool{}
		providers []string
		rows      [][]string
	)
	for _, s := range t.Sections {
		if s.Title != "" {
			title := make([]string, len(headers))
			title[0] = s.Title
			titleRows[len(rows)] = true
			providers = append(providers, s.ProviderID)
			rows = append(rows, title)
		}
		for _, row := range s.Rows {
			providers = append(providers, row.ProviderID)
			rows = append(rows, Cells(row, t.Display))
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1).Foreground(theme.Text)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		Wrap(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleHeader(theme).Padding(0, 1)
			case titleRows[row]:
				return StyleSubheader(theme).Padding(0, 1)
			case col == 1 && row < len(providers):
				return cell.Foreground(ProviderColor(providers[row], theme))
			case col >= priceColumn:
				return cell.Align(lipgloss.Right)
			default:
				return cell
			}
		})
	if r.Width > 0 {
		tbl = tbl.Width(r.Width)
	}
	return tbl.String()
}

// Markdown renders t as GitHub-flavored Markdown: the title, the tables
// and the footer.
func (r Renderer) Markdown(t view.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Localizer.T(localization.MsgTitle))
	b.WriteString(r.MarkdownTables(t))
	fmt.Fprintf(&b, "_%s_\n", r.Footer(t))
	return b.String()
}

// MarkdownTables renders one Markdown table per section, each titled with a
// second-level heading when the table is grouped.
func (r Renderer) MarkdownTables(t view.Table) string {
	headers := r.Headers()

	var b strings.Builder
	for _, s := range t.Sections {
		if s.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(s.Title))
		}
		writeMarkdownRow(&b, headers)
		b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
		for _, row := range s.Rows {
			writeMarkdownRow(&b, Cells(row, t.Display))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeMarkdown(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
