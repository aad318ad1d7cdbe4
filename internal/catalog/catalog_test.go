package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mark3labs/llmprices/internal/pricing"
)

const testModels = `{
  "updatedAt": 1760832000000,
  "models": [
    {"id": "a", "name": "Alpha", "provider": "openai", "billingCurrency": "USD", "inputPrice": 10, "outputPrice": 30},
    {"id": "b", "name": "Beta", "provider": "deepseek", "billingCurrency": "CNY",
     "pricingTiers": [{"label": "0-32K", "inputPrice": 50, "outputPrice": 60, "cachedInputPrice": 5}]}
  ]
}`

const testProviders = `[
  {"id": "openai", "name": "OpenAI", "pricingUrl": "https://openai.com/api/pricing/", "region": "US", "description": "d"},
  {"id": "deepseek", "name": "DeepSeek", "pricingUrl": "https://api-docs.deepseek.com", "region": "CN", "description": "d"}
]`

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestLoadFromHTTP(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/prices/models.json":    serve(testModels),
		"/prices/providers.json": serve(testProviders),
	})

	src, err := ResolveSource(srv.URL+"/prices", srv.Client())
	if err != nil {
		t.Fatal(err)
	}

	cat, err := NewLoader(src).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cat.Models) != 2 || len(cat.Providers) != 2 {
		t.Fatalf("got %d models, %d providers", len(cat.Models), len(cat.Providers))
	}
	if cat.UpdatedAt.UnixMilli() != 1760832000000 {
		t.Errorf("updatedAt = %v", cat.UpdatedAt)
	}

	beta := cat.Models[1]
	if beta.BillingCurrency != pricing.CNY || len(beta.PricingTiers) != 1 {
		t.Fatalf("unexpected beta model: %+v", beta)
	}
	if cp := beta.PricingTiers[0].CachedInputPrice; cp == nil || *cp != 5 {
		t.Errorf("cached input = %v, want 5", cp)
	}
	if cat.Models[0].CachedInputPrice != nil {
		t.Errorf("absent cached price should decode to nil")
	}
}

func TestLoadFailsWhenEitherDocumentFails(t *testing.T) {
	tests := []struct {
		name     string
		models   http.HandlerFunc
		provs    http.HandlerFunc
		document string
	}{
		{
			name:     "providers 404",
			models:   serve(testModels),
			provs:    http.NotFound,
			document: ProvidersDocument,
		},
		{
			name: "models 500",
			models: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			provs:    serve(testProviders),
			document: ModelsDocument,
		},
		{
			name:     "malformed models",
			models:   serve(`{"models": [`),
			provs:    serve(testProviders),
			document: ModelsDocument,
		},
		{
			name:     "providers not an array",
			models:   serve(testModels),
			provs:    serve(`{"id": "openai"}`),
			document: ProvidersDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, map[string]http.HandlerFunc{
				"/models.json":    tt.models,
				"/providers.json": tt.provs,
			})

			cat, err := NewLoader(&HTTPSource{BaseURL: srv.URL, Client: srv.Client()}).Load(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if cat != nil {
				t.Errorf("expected no catalog on failure")
			}

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if loadErr.Document != tt.document {
				t.Errorf("failed document = %q, want %q", loadErr.Document, tt.document)
			}
		})
	}
}

func TestStatusErrorIsReported(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/models.json":    http.NotFound,
		"/providers.json": serve(testProviders),
	})

	_, err := NewLoader(&HTTPSource{BaseURL: srv.URL, Client: srv.Client()}).Load(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", statusErr.StatusCode)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelsDocument), []byte(testModels), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ProvidersDocument), []byte(testProviders), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := ResolveSource(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(DirSource); !ok {
		t.Fatalf("expected DirSource, got %T", src)
	}

	cat, err := NewLoader(src).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Models) != 2 {
		t.Errorf("got %d models", len(cat.Models))
	}
}

func TestLoadFromDirectoryMissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelsDocument), []byte(testModels), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewLoader(DirSource{Dir: dir}).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestLoadEmbedded(t *testing.T) {
	src, err := ResolveSource("", nil)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := NewLoader(src).Load(context.Background())
	if err != nil {
		t.Fatalf("embedded snapshot failed to load: %v", err)
	}
	if len(cat.Models) == 0 || len(cat.Providers) == 0 {
		t.Fatal("embedded snapshot is empty")
	}
	for _, m := range cat.Models {
		if _, ok := cat.Provider(m.Provider); !ok {
			t.Errorf("model %s references unknown provider %s", m.ID, m.Provider)
		}
		if m.BillingCurrency != pricing.USD && m.BillingCurrency != pricing.CNY {
			t.Errorf("model %s has billing currency %q", m.ID, m.BillingCurrency)
		}
	}
}

func TestResolveSourceRejectsFiles(t *testing.T) {
	f := filepath.Join(t.TempDir(), "models.json")
	if err := os.WriteFile(f, []byte(testModels), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveSource(f, nil); err == nil {
		t.Error("expected an error for a file path")
	}
	if _, err := ResolveSource(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestProviderLookups(t *testing.T) {
	cat := New(
		Empty().UpdatedAt,
		[]pricing.Model{
			{ID: "1", Provider: "zhipu"},
			{ID: "2", Provider: "anthropic"},
			{ID: "3", Provider: "zhipu"},
		},
		[]pricing.Provider{{ID: "anthropic", Name: "Anthropic"}},
	)

	if got := cat.ProviderName("anthropic"); got != "Anthropic" {
		t.Errorf("ProviderName(anthropic) = %q", got)
	}
	if got := cat.ProviderName("zhipu"); got != "zhipu" {
		t.Errorf("ProviderName(zhipu) = %q, want id fallback", got)
	}
	if got, want := cat.ProviderIDs(), []string{"anthropic", "zhipu"}; !slices.Equal(got, want) {
		t.Errorf("ProviderIDs = %v, want %v", got, want)
	}
	if got := cat.ModelsForProvider("zhipu"); len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("ModelsForProvider = %+v", got)
	}
}
