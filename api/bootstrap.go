package api

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/cache"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/events"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/db"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
)

// NewCalculator builds the calculator from the pricing section of cfg
func NewCalculator(cfg config.PricingConfig) (*cost.Calculator, error) {
	tiers, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	schedule, err := fees.Load(cfg.FeeSchedulePath)
	if err != nil {
		return nil, err
	}
	opts := cost.DefaultOptions()
	opts.Currency = cfg.Currency
	opts.TaxRate = cfg.TaxRate
	opts.SPTFeePerItem = cfg.SPTFeePerItem
	opts.DeductSPTFee = cfg.DeductSPTFee
	return cost.NewCalculator(tiers, schedule, opts), nil
}

// Build wires every collaborator described by cfg into a server. The
// returned cleanup closes connections in reverse order of creation.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) (*Server, func(), error) {
	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}
	}

	calc, err := NewCalculator(cfg.Pricing)
	if err != nil {
		return nil, cleanup, err
	}

	var store workflow.Store
	switch cfg.Database.Driver {
	case "postgres":
		pg, err := db.OpenPostgres(cfg.Database)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pg)
		if err := pg.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		store = pg
	default:
		store = db.NewMemoryStore()
	}

	quotes, err := cache.New(cfg.Cache)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	closers = append(closers, quotes)

	publisher, err := events.New(cfg.Events, logger.Named("events"))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	if c, ok := publisher.(io.Closer); ok {
		closers = append(closers, c)
	}

	logger.Info("server wired",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("events", cfg.Events.Enabled),
		zap.Int("tiers", calc.Tiers().Len()))

	srv := NewServer(Deps{
		Calculator: calc,
		Workflow:   workflow.NewService(store, calc.Tiers(), publisher, logger.Named("workflow")),
		Cache:      quotes,
		Tokens:     auth.NewTokens(cfg.Auth),
		Logger:     logger.Named("api"),
		Version:    version,
	})
	return srv, cleanup, nil
}

// Serve builds the server from cfg and runs it until ctx is cancelled
func Serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, version string) error {
	srv, cleanup, err := Build(ctx, cfg, logger, version)
	defer cleanup()
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Server.Addr)
}
