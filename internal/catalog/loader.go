package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/llmprices/internal/pricing"
)

// ErrMalformed is wrapped by LoadError when a document is not the JSON
// shape it should be.
var ErrMalformed = errors.New("malformed document")

// LoadError is returned when either document fails. There is no partial
// success: the caller gets no catalog at all.
type LoadError struct {
	Document string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Document, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader fetches both documents from a Source.
type Loader struct {
	source Source
}

// NewLoader returns a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{source: src}
}

// Load fetches models.json and providers.json concurrently and returns the
// joined catalog. The first failure cancels the other fetch and is returned
// as a *LoadError.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	var (
		updatedAt time.Time
		models    []pricing.Model
		providers []pricing.Provider
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := l.source.Fetch(gctx, ModelsDocument)
		if err != nil {
			return &LoadError{Document: ModelsDocument, Err: err}
		}
		updatedAt, models, err = decodeModels(data)
		if err != nil {
			return &LoadError{Document: ModelsDocument, Err: err}
		}
		return nil
	})

	g.Go(func() error {
		data, err := l.source.Fetch(gctx, ProvidersDocument)
		if err != nil {
			return &LoadError{Document: ProvidersDocument, Err: err}
		}
		providers, err = decodeProviders(data)
		if err != nil {
			return &LoadError{Document: ProvidersDocument, Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Debug("catalog load failed", "source", l.source, "err", err)
		return nil, err
	}

	log.Debug("loaded catalog", "source", l.source, "models", len(models), "providers", len(providers))
	return New(updatedAt, models, providers), nil
}

// modelsFile is the wire shape of models.json.
type modelsFile struct {
	Models []pricing.Model `json:"models"`
}

func decodeModels(data []byte) (time.Time, []pricing.Model, error) {
	if !gjson.ValidBytes(data) {
		return time.Time{}, nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return time.Time{}, nil, fmt.Errorf("%w: expected an object with a models array", ErrMalformed)
	}

	var file modelsFile
	if err := sonic.Unmarshal(data, &file); err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var updatedAt time.Time
	if ts := doc.Get("updatedAt"); ts.Exists() && ts.Int() > 0 {
		updatedAt = time.UnixMilli(ts.Int())
	}

	return updatedAt, file.Models, nil
}

func decodeProviders(data []byte) ([]pricing.Provider, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	if !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf("%w: expected an array of providers", ErrMalformed)
	}

	var providers []pricing.Provider
	if err := sonic.Unmarshal(data, &providers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return providers, nil
}
