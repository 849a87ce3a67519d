// Package container provides dependency injection for the kpss-tercih
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"kpss-tercih/internal/classifier"
	"kpss-tercih/internal/config"
	"kpss-tercih/internal/export"
	"kpss-tercih/internal/fetcher"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/merger"
	"kpss-tercih/internal/pdfparser"
	"kpss-tercih/internal/pipeline"
	"kpss-tercih/internal/positionparser"
	"kpss-tercih/internal/report"
	"kpss-tercih/internal/store"
	"kpss-tercih/internal/vocabulary"
)

// SeederFactory opens the database sink on demand.
type SeederFactory func(ctx context.Context, databaseURL string, logger logging.Logger) (store.Seeder, error)

// Option customizes a Container, mainly for tests.
type Option func(*options)

type options struct {
	logger    logging.Logger
	extractor pdfparser.Extractor
	seeder    SeederFactory
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExtractor replaces the PDF text extractor.
func WithExtractor(e pdfparser.Extractor) Option {
	return func(o *options) { o.extractor = e }
}

// WithSeederFactory replaces the PostgreSQL connection.
func WithSeederFactory(f SeederFactory) Option {
	return func(o *options) { o.seeder = f }
}

func connectStore(ctx context.Context, databaseURL string, logger logging.Logger) (store.Seeder, error) {
	s, err := store.Connect(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Container holds all application dependencies. It is immutable after
// creation; components are reached through getters.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	vocabulary *vocabulary.Vocabulary
	classifier *classifier.Classifier
	extractor  pdfparser.Extractor
	pipeline   *pipeline.Pipeline
	exporter   *export.Exporter
	reports    *report.ReportGenerator
	fetcher    *fetcher.Fetcher
	seeder     SeederFactory
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := options{seeder: connectStore}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	vocab, err := vocabulary.Load(cfg.Vocabulary.File, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	extractor := o.extractor
	if extractor == nil {
		extractor = pdfparser.NewPDFExtractor(logger, cfg.Parse.ColumnGap)
	}

	cls := classifier.New()
	pipe := pipeline.New(
		cls,
		extractor,
		positionparser.New(vocab),
		merger.New(cfg.MergePolicy(), logger),
		logger,
		pipeline.Options{Workers: cfg.Parse.Workers, FileTimeout: cfg.FileTimeout()},
	)

	f := fetcher.New(fetcher.Config{
		BaseURL:      cfg.Fetch.BaseURL,
		IndexPath:    cfg.Fetch.IndexPath,
		DocumentHost: cfg.Fetch.DocumentHost,
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.FetchTimeout(),
	}, cls, logger)

	logger.Debug("Container initialized",
		logging.F("workers", cfg.Parse.Workers),
		logging.F("merge_policy", string(cfg.MergePolicy())),
		logging.F("cities", len(vocab.Cities)),
		logging.F("employment_types", len(vocab.EmploymentTypes)))

	return &Container{
		logger:     logger,
		config:     cfg,
		vocabulary: vocab,
		classifier: cls,
		extractor:  extractor,
		pipeline:   pipe,
		exporter:   export.New(logger, cfg.Delimiter()),
		reports:    report.NewReportGenerator(logger),
		fetcher:    f,
		seeder:     o.seeder,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetVocabulary returns the city and employment-type tables in use.
func (c *Container) GetVocabulary() *vocabulary.Vocabulary {
	return c.vocabulary
}

// GetClassifier returns the file-name classifier.
func (c *Container) GetClassifier() *classifier.Classifier {
	return c.classifier
}

// GetExtractor returns the PDF text extractor.
func (c *Container) GetExtractor() pdfparser.Extractor {
	return c.extractor
}

// GetPipeline returns the ingestion pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetExporter returns the CSV and XLSX exporter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// GetReportGenerator returns the run-report renderer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetFetcher returns the ÖSYM bulletin fetcher.
func (c *Container) GetFetcher() *fetcher.Fetcher {
	return c.fetcher
}

// OpenStore connects to the configured database.
func (c *Container) OpenStore(ctx context.Context) (store.Seeder, error) {
	return c.seeder(ctx, c.config.Database.URL, c.logger)
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
