package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/genkit/internal/config"
	"github.com/eleven-am/genkit/internal/generator"
	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/introspect"
	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/render"
	"github.com/eleven-am/genkit/internal/store"
)

// app holds the connections behind one command.
type app struct {
	store   *store.Store
	service *generator.Service
	closers []func() error
}

// openSource connects to the live database. Tests replace it.
var openSource = func(ctx context.Context, src config.SourceConfig) (generator.SchemaSource, func() error, error) {
	if src.URL == "" {
		return nil, nil, errors.New("source url is not configured (set source.url or GENKIT_SOURCE_URL)")
	}

	inspector, err := introspect.Open(ctx, src.Driver, src.URL, src.Schema)
	if err != nil {
		return nil, nil, err
	}
	return inspector, inspector.Close, nil
}

// newApp opens the store and, when withSource is set, the live database.
func newApp(ctx context.Context, withSource bool) (*app, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	st, err := store.Open(ctx, store.Options{
		Driver:         cfg.Store.Driver,
		URL:            cfg.Store.URL,
		MaxConnections: cfg.Store.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	a := &app{store: st, closers: []func() error{st.Close}}

	if err := st.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var source generator.SchemaSource
	if withSource {
		src, closeSource, err := openSource(ctx, cfg.Source)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open source database: %w", err)
		}
		source = src
		if closeSource != nil {
			a.closers = append(a.closers, closeSource)
		}
	}

	a.service = generator.NewService(source, st, render.NewTemplates(cfg.Generator.TemplateDir), generator.Options{
		Defaults: infer.Defaults{
			Module:   cfg.Generator.ModuleName,
			Author:   cfg.Generator.Author,
			Category: cfg.Generator.DefaultCategory,
		},
		ExcludePrefixes: cfg.Generator.ExcludePrefixes,
		Workers:         cfg.Generator.Workers,
	})

	return a, nil
}

// Close releases every connection in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.CLI().WithError(err).Warn("Failed to close connection")
		}
	}
}

// operatorContext attaches the configured operator.
func operatorContext(ctx context.Context) context.Context {
	name := ""
	if cfg != nil {
		name = cfg.Operator
	}
	return generator.WithOperator(ctx, name)
}
