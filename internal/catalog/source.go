package catalog

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Document names resolved against a source's base.
const (
	ModelsDocument    = "models.json"
	ProvidersDocument = "providers.json"
)

// EmbeddedSourceName selects the snapshot compiled into the binary.
const EmbeddedSourceName = "embedded"

//go:embed data/models.json data/providers.json
var embeddedData embed.FS

// Source fetches a named document.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// ResolveSource maps the configured base to a Source:
//
//	""/"embedded"        the built-in snapshot
//	"cached"             the snapshot saved in DataDir
//	http(s)://...        documents fetched relative to the base URL
//	anything else        a local directory holding both documents
func ResolveSource(base string, client *http.Client) (Source, error) {
	switch {
	case base == "" || base == EmbeddedSourceName:
		return EmbeddedSource{}, nil

	case base == CachedSourceName:
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(filepath.Join(dir, ModelsDocument)); err != nil {
			return nil, fmt.Errorf("no saved snapshot in %s, run 'llmprices snapshot' first: %w", dir, err)
		}
		return DirSource{Dir: dir}, nil

	case strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://"):
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("invalid source URL %q: %w", base, err)
		}
		return &HTTPSource{BaseURL: base, Client: client}, nil

	default:
		info, err := os.Stat(base)
		if err != nil {
			return nil, fmt.Errorf("source directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %q is not a directory", base)
		}
		return DirSource{Dir: base}, nil
	}
}

// HTTPSource fetches documents over HTTP relative to BaseURL. Only 2xx
// responses are accepted.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

func (s *HTTPSource) String() string { return s.BaseURL }

// DirSource reads documents from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

func (s DirSource) String() string { return s.Dir }

// EmbeddedSource serves the snapshot shipped with the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(_ context.Context, name string) ([]byte, error) {
	return embeddedData.ReadFile("data/" + name)
}

func (EmbeddedSource) String() string { return EmbeddedSourceName }
