// Package localization provides the translated labels used by the table
// renderers and the interactive view.
package localization

import (
	"embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localesFS embed.FS

// Message ids defined in locales/active.<lang>.toml.
const (
	MsgTitle             = "Title"
	MsgSubtitle          = "Subtitle"
	MsgCaption           = "Caption"
	MsgLoading           = "Loading"
	MsgLoadFailed        = "LoadFailed"
	MsgNoResults         = "NoResults"
	MsgSearchPlaceholder = "SearchPlaceholder"
	MsgAllProviders      = "AllProviders"
	MsgSortName          = "SortName"
	MsgSortInputAsc      = "SortInputAsc"
	MsgSortInputDesc     = "SortInputDesc"
	MsgSortOutputAsc     = "SortOutputAsc"
	MsgSortOutputDesc    = "SortOutputDesc"
	MsgGroupByProvider   = "GroupByProvider"
	MsgDisplayCurrency   = "DisplayCurrency"
	MsgExchangeRate      = "ExchangeRate"
	MsgUpdatedAt         = "UpdatedAt"
	MsgColumnModel       = "ColumnModel"
	MsgColumnProvider    = "ColumnProvider"
	MsgColumnBilling     = "ColumnBilling"
	MsgColumnTier        = "ColumnTier"
	MsgColumnInput       = "ColumnInput"
	MsgColumnOutput      = "ColumnOutput"
	MsgColumnCachedIn    = "ColumnCachedInput"
	MsgColumnCachedOut   = "ColumnCachedOutput"
	MsgPriceUnit         = "PriceUnit"
	MsgOn                = "On"
	MsgOff               = "Off"
	MsgUnifiedPricing    = "UnifiedPricing"
	MsgProviderRegion    = "ProviderRegion"
	MsgProviderPricing   = "ProviderPricing"
	MsgProviderModels    = "ProviderModels"
)

// Supported lists the languages that ship a message file. The first entry
// is the fallback.
var Supported = []language.Tag{language.English, language.Chinese}

var matcher = language.NewMatcher(Supported)

// Bundle holds every parsed message file.
type Bundle struct {
	bundle *i18n.Bundle
}

// NewBundle parses the embedded message files.
func NewBundle() (*Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, tag := range Supported {
		filename := fmt.Sprintf("locales/active.%s.toml", tag)

		data, err := localesFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", filename, err)
		}

		if _, err := bundle.ParseMessageFileBytes(data, filename); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", filename, err)
		}
	}

	return &Bundle{bundle: bundle}, nil
}

// Match maps a user supplied language (e.g. "zh-CN", "en_US", "") to the
// closest supported tag. Unparseable input falls back to English.
func Match(lang string) language.Tag {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return Supported[0]
	}

	tag, err := language.Parse(lang)
	if err != nil {
		log.Debug("unknown language, using English", "language", lang, "err", err)
		return Supported[0]
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[index]
}

// Localizer translates message ids for one language.
type Localizer struct {
	localizer *i18n.Localizer
	tag       language.Tag
}

// Localizer returns a localizer for lang, see Match.
func (b *Bundle) Localizer(lang string) *Localizer {
	tag := Match(lang)
	return &Localizer{
		localizer: i18n.NewLocalizer(b.bundle, tag.String(), Supported[0].String()),
		tag:       tag,
	}
}

// Tag returns the language the localizer resolved to.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T translates a message id. Unknown ids are returned verbatim.
func (l *Localizer) T(id string) string {
	return l.Tf(id, nil)
}

// Tf translates a message id with template data.
func (l *Localizer) Tf(id string, data map[string]any) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		log.Debug("missing translation", "id", id, "language", l.tag, "err", err)
		return id
	}
	return msg
}
