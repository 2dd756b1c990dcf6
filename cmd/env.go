package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/service"
	"github.com/sells-group/riskbench/internal/store"
)

// env bundles the store and service shared by every command.
type env struct {
	Store   store.Store
	Service *service.Service
}

func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	comparator, err := buildComparator()
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	source := service.StoreSource{Store: st}
	if comparator != nil {
		source.Taxonomy = comparator.Taxonomy()
	}

	zap.L().Debug("environment ready", zap.String("driver", cfg.Store.Driver))
	return &env{
		Store: st,
		Service: service.New(st, source, comparator).
			WithScatterLimit(cfg.Benchmark.ScatterLimit),
	}, nil
}

// buildComparator returns nil when no custom taxonomy is configured,
// selecting the built-in hierarchy.
func buildComparator() (*benchmark.Comparator, error) {
	if cfg.Benchmark.TaxonomyPath == "" {
		return nil, nil
	}
	tax, err := benchmark.LoadTaxonomy(cfg.Benchmark.TaxonomyPath)
	if err != nil {
		return nil, eris.Wrap(err, "load taxonomy")
	}
	return benchmark.NewComparator(tax), nil
}

func (e *env) Close() {
	e.Store.Close() //nolint:errcheck
}
