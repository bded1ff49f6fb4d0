// Command reportgen retrieves AI-written report contents, renders every page
// combination and assembles the chosen variations into the full report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/convertapi"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/ooxml"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/retrieval"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/templates"
	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/services"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
	"github.com/custodia-labs/reportgen-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/reportgen-cli/internal/proposal"
)

var version = "dev"

var mainLog = logger.For("main")

func main() {
	// A .env in the working directory may carry REPORTGEN_* overrides and secrets.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "reading .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx, build); err != nil {
		os.Exit(1)
	}
}

// build wires the adapters and services for the parsed configuration directory.
func build(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			mainLog.Warn("closing store: %v", err)
		}
	}

	templateStore, err := templates.New(ctx, settings.Templates)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("opening templates: %w", err)
	}

	retrievalClient := retrieval.NewClient(retrieval.Config{
		BaseURL: settings.Retrieval.BaseURL,
		Timeout: settings.Retrieval.Timeout,
	})

	// Without a secret, generation renders DOCX only and PDF downloads fail.
	var converter driven.PDFConverter
	if settings.Conversion.Secret != "" {
		client, err := convertapi.NewClient(convertapi.Config{
			BaseURL:           settings.Conversion.BaseURL,
			Secret:            settings.Conversion.Secret,
			RequestsPerSecond: settings.Conversion.RequestsPerSecond,
			Burst:             settings.Conversion.Burst,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("configuring conversion: %w", err)
		}
		converter = client
	}

	renderer := ooxml.New()
	pipeline := services.NewRenderPipeline(templateStore, renderer, converter)

	schedulerConfig := settingsService.GetSchedulerConfig()
	scheduler := services.NewScheduler(schedulerConfig, store.SchedulerStore(), services.Housekeeping{
		Artifacts:       store.ArtifactStore(),
		Contents:        store.ContentsStore(),
		KeepGenerations: settings.Generation.Keep,
		ContentsMaxAge:  settingsService.ContentsMaxAge(),
	})

	return &cli.Services{
		Settings: settingsService,
		Content: services.NewContentService(
			retrievalClient, store.ContentsStore(), markdown.New(), settings.Classifier,
		),
		Generation: services.NewGenerationService(pipeline, store.ArtifactStore(), settings.Generation),
		Document:   services.NewDocumentService(templateStore, renderer, converter),
		Proposal: services.NewProposalService(
			proposal.DefaultStages(retrievalClient), templateStore, renderer,
		),
		Conversion:      pipeline,
		Scheduler:       scheduler,
		SchedulerConfig: schedulerConfig,
	}, cleanup, nil
}
