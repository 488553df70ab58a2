package cli

import (
	"context"
	"fmt"

	"fka/internal/backend"
	"fka/internal/cache"
	"fka/internal/config"
	"fka/internal/document"
	"fka/internal/log"
	"fka/internal/photo"
	"fka/internal/policy"
	"fka/internal/services"
)

// App holds the wired services for one command invocation.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Backend    *backend.BackendResult
	Ledger     *services.LedgerService
	Submission *services.SubmissionService
	Assembler  *document.Assembler
}

func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	ledger, err := services.NewLedgerService(ctx, res.Store, logger)
	if err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	normalizerOpts := []photo.Option{photo.WithLogger(logger)}
	if cfg.ImageCacheSize > 0 {
		normalizerOpts = append(normalizerOpts, photo.WithCache(cache.NewLRUCache[*photo.Normalized](cfg.ImageCacheSize, cfg.ImageCacheTTL)))
	}

	summary := document.DefaultSummaryOptions()
	if cfg.Organization != "" {
		summary.Organization = cfg.Organization
	}
	summary.ContactEmail = cfg.ContactEmail

	assembler := document.NewAssembler(
		document.NewPDFSummaryRenderer(summary),
		photo.NewNormalizer(normalizerOpts...),
		document.NewDirSink(cfg.OutputDir),
		document.WithAssemblerLogger(logger),
		document.WithTimeout(cfg.AssemblyTimeout),
		document.WithJPEGQuality(cfg.JPEGQuality),
	)

	// A nil *amqp.Client must not become a non-nil Publisher.
	var publisher services.Publisher
	if res.AMQP != nil {
		publisher = res.AMQP
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Backend:    res,
		Ledger:     ledger,
		Submission: services.NewSubmissionService(res.Store, policy.DefaultValidator(cfg.ReviewThreshold), assembler, publisher, logger),
		Assembler:  assembler,
	}, nil
}

func (a *App) Close() error {
	if a.Backend != nil && a.Backend.Cleanup != nil {
		return a.Backend.Cleanup()
	}
	return nil
}
