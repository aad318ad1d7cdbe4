package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/llmprices/internal/catalog"
	"github.com/mark3labs/llmprices/internal/pricing"
	"github.com/mark3labs/llmprices/internal/view"
)

func stubLoad(cat *catalog.Catalog, err error) LoadFunc {
	return func(context.Context) (*catalog.Catalog, error) {
		return cat, err
	}
}

func newTestPriceTable(t *testing.T, height int) *PriceTable {
	t.Helper()
	conv, err := pricing.NewConverter(7.2)
	if err != nil {
		t.Fatal(err)
	}
	pt := NewPriceTable(context.Background(), stubLoad(testCatalog(), nil), testLocalizer(t, "en"),
		view.Options{Display: pricing.USD, Converter: conv})
	pt.Update(tea.WindowSizeMsg{Width: 120, Height: height})
	return pt
}

func loaded(t *testing.T, height int) *PriceTable {
	t.Helper()
	pt := newTestPriceTable(t, height)
	pt.Update(loadedMsg{catalog: testCatalog()})
	return pt
}

func press(pt *PriceTable, msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := pt.Update(msg)
	return cmd
}

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPriceTableLoading(t *testing.T) {
	pt := newTestPriceTable(t, 40)

	if cmd := pt.Init(); cmd == nil {
		t.Fatal("Init should start the spinner and the load")
	}
	if content := pt.View().Content; !strings.Contains(content, "Loading models...") {
		t.Errorf("expected loading state, got:\n%s", content)
	}

	// Controls are inert until the catalog arrives.
	press(pt, char('p'))
	if pt.Options().Query.Provider != view.AllProviders {
		t.Error("provider changed while loading")
	}

	msg := pt.loadCmd()()
	pt.Update(msg)
	if pt.Table().ModelCount != 3 {
		t.Errorf("expected 3 models after load, got %d", pt.Table().ModelCount)
	}
}

func TestPriceTableLoadError(t *testing.T) {
	pt := newTestPriceTable(t, 40)
	pt.Update(loadedMsg{err: errors.New("boom")})

	if pt.Err() == nil {
		t.Fatal("expected the load error to be kept")
	}
	if content := pt.View().Content; !strings.Contains(content, "Failed to load: boom") {
		t.Errorf("expected error state, got:\n%s", content)
	}
	if pt.catalog == nil || len(pt.catalog.Models) != 0 {
		t.Errorf("expected an empty catalog after a failed load, got %v", pt.catalog)
	}
	if !pt.Table().Empty() {
		t.Error("expected an empty table after a failed load")
	}

	// Filters stay inert in the error state.
	press(pt, char('p'))
	press(pt, char('g'))
	if pt.Options().Query.Provider != view.AllProviders || pt.Options().GroupByProvider {
		t.Error("controls changed after a failed load")
	}
	if !isQuit(press(pt, char('q'))) {
		t.Error("q should quit from the error state")
	}
}

func TestPriceTableForceQuit(t *testing.T) {
	pt := newTestPriceTable(t, 40)
	if !isQuit(press(pt, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})) {
		t.Error("ctrl+c should quit while loading")
	}
}

func TestPriceTableReadyView(t *testing.T) {
	pt := loaded(t, 40)
	content := pt.View().Content

	for _, want := range []string{"Claude Sonnet 4.5", "GPT-4.1", "All providers", "q: quit", "Rate 1 USD = 7.2 CNY"} {
		if !strings.Contains(content, want) {
			t.Errorf("view missing %q:\n%s", want, content)
		}
	}
}

func TestPriceTableProviderCycle(t *testing.T) {
	pt := loaded(t, 40)

	press(pt, char('p'))
	if got := pt.Options().Query.Provider; got != "anthropic" {
		t.Fatalf("provider after p = %q, want anthropic", got)
	}
	if pt.Table().ModelCount != 1 {
		t.Errorf("expected only anthropic models, got %d", pt.Table().ModelCount)
	}

	press(pt, char('P'))
	if got := pt.Options().Query.Provider; got != view.AllProviders {
		t.Errorf("provider after P = %q, want all", got)
	}

	press(pt, char('P'))
	if got := pt.Options().Query.Provider; got != "zhipu" {
		t.Errorf("P should wrap to the last provider, got %q", got)
	}
}

func TestPriceTableSortCycle(t *testing.T) {
	pt := loaded(t, 40)
	if pt.Options().Sort != view.SortInputAsc {
		t.Fatalf("initial sort = %s", pt.Options().Sort)
	}

	press(pt, char('s'))
	if pt.Options().Sort != view.SortInputDesc {
		t.Errorf("sort after s = %s", pt.Options().Sort)
	}
	press(pt, char('S'))
	press(pt, char('S'))
	if pt.Options().Sort != view.SortName {
		t.Errorf("sort after S S = %s", pt.Options().Sort)
	}
	if pt.Table().Sort != view.SortName {
		t.Error("table was not rebuilt after the sort change")
	}
}

func TestPriceTableGroupStatusIsLocalized(t *testing.T) {
	conv, err := pricing.NewConverter(7.2)
	if err != nil {
		t.Fatal(err)
	}
	pt := NewPriceTable(context.Background(), stubLoad(testCatalog(), nil), testLocalizer(t, "zh"),
		view.Options{Display: pricing.USD, Converter: conv})
	pt.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	pt.Update(loadedMsg{catalog: testCatalog()})

	content := pt.View().Content
	if !strings.Contains(content, "按供应商分组") || !strings.Contains(content, "关") || strings.Contains(content, "off") {
		t.Errorf("expected the localized off state:\n%s", content)
	}
	press(pt, char('g'))
	content = pt.View().Content
	if !strings.Contains(content, "开") {
		t.Errorf("expected the localized on state:\n%s", content)
	}
}

func TestPriceTableToggles(t *testing.T) {
	pt := loaded(t, 40)

	press(pt, char('g'))
	if !pt.Options().GroupByProvider || !pt.Table().Grouped {
		t.Error("g should enable grouping")
	}
	if len(pt.Table().Sections) != 3 {
		t.Errorf("expected 3 provider sections, got %d", len(pt.Table().Sections))
	}

	press(pt, char('c'))
	if pt.Options().Display != pricing.CNY || pt.Table().Display != pricing.CNY {
		t.Error("c should switch the display currency to CNY")
	}
	press(pt, char('c'))
	if pt.Table().Display != pricing.USD {
		t.Error("c should switch back to USD")
	}
}

func TestPriceTableSearch(t *testing.T) {
	pt := loaded(t, 40)

	press(pt, char('/'))
	if !pt.search.Focused() {
		t.Fatal("/ should focus the search box")
	}

	for _, r := range "gpt" {
		press(pt, char(r))
	}
	if got := pt.Options().Query.Search; got != pt.search.Value() || !strings.Contains(got, "gpt") {
		t.Fatalf("query = %q, input = %q", got, pt.search.Value())
	}
	if pt.Table().ModelCount != 1 {
		t.Errorf("expected 1 match, got %d", pt.Table().ModelCount)
	}

	// Typing q while searching must not quit.
	if isQuit(press(pt, char('q'))) {
		t.Error("q quit while the search box was focused")
	}

	press(pt, tea.KeyPressMsg{Code: tea.KeyEscape})
	if pt.search.Focused() {
		t.Error("esc should leave the search box")
	}

	press(pt, tea.KeyPressMsg{Code: tea.KeyEscape})
	if pt.Options().Query.Search != "" || pt.Table().ModelCount != 3 {
		t.Error("esc outside the search box should clear the search")
	}
}

func TestPriceTableNoResults(t *testing.T) {
	pt := loaded(t, 40)
	pt.search.SetValue("no such model")
	pt.opts.Query.Search = "no such model"
	pt.rebuild()

	if content := pt.View().Content; !strings.Contains(content, "No models match the current filters.") {
		t.Errorf("expected the no results message:\n%s", content)
	}
}

func TestPriceTableScroll(t *testing.T) {
	pt := loaded(t, 12)
	page := pt.visibleHeight()
	if len(pt.lines) <= page {
		t.Fatalf("table should overflow a %d line window, has %d lines", page, len(pt.lines))
	}
	last := len(pt.lines) - page

	press(pt, tea.KeyPressMsg{Code: tea.KeyUp})
	if pt.offset != 0 {
		t.Errorf("offset = %d, want 0 at the top", pt.offset)
	}
	press(pt, tea.KeyPressMsg{Code: tea.KeyDown})
	if pt.offset != 1 {
		t.Errorf("offset = %d, want 1", pt.offset)
	}
	press(pt, tea.KeyPressMsg{Code: tea.KeyEnd})
	if pt.offset != last {
		t.Errorf("offset = %d, want %d", pt.offset, last)
	}
	press(pt, tea.KeyPressMsg{Code: tea.KeyPgDown})
	if pt.offset != last {
		t.Errorf("offset ran past the end: %d", pt.offset)
	}
	press(pt, tea.KeyPressMsg{Code: tea.KeyHome})
	if pt.offset != 0 {
		t.Errorf("offset = %d after home", pt.offset)
	}
}

func TestCycle(t *testing.T) {
	values := []string{"a", "b", "c"}
	tests := []struct {
		current string
		step    int
		want    string
	}{
		{"a", 1, "b"},
		{"c", 1, "a"},
		{"a", -1, "c"},
		{"missing", 1, "a"},
	}
	for _, tt := range tests {
		if got := cycle(values, tt.current, tt.step); got != tt.want {
			t.Errorf("cycle(%q, %d) = %q, want %q", tt.current, tt.step, got, tt.want)
		}
	}
	if got := cycle(nil, "x", 1); got != "x" {
		t.Errorf("empty cycle should keep the current value, got %q", got)
	}
}
