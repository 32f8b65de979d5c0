// Package container provides dependency injection for the statement-csv
// application. It builds the shared, read-only collaborators once per
// process and assembles per-format pipelines from them.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"fjacquet/statement-csv/internal/categorizer"
	"fjacquet/statement-csv/internal/classifier"
	"fjacquet/statement-csv/internal/config"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/output"
	"fjacquet/statement-csv/internal/pipeline"
	"fjacquet/statement-csv/internal/rules"
	"fjacquet/statement-csv/internal/store"
)

// DefaultRulesFile is looked up when no rule file is configured.
const DefaultRulesFile = "rules.csv"

// Container holds all application dependencies. It is immutable after
// creation.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    store.Store
	registry *format.Registry
	rules    *rules.Table
	aiClient categorizer.AIClient
	closeAI  func() error
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	return New(cfg, logger, store.NewFileStore(logger))
}

// New wires the container from explicit collaborators. A nil store uses
// the file system.
func New(cfg *config.Config, logger logging.Logger, st store.Store) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)
	if st == nil {
		st = store.NewFileStore(logger)
	}

	registry, err := format.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in formats: %w", err)
	}
	if cfg.Formats.File != "" {
		if err := registry.LoadFile(st, cfg.Formats.File, logger); err != nil {
			return nil, fmt.Errorf("failed to load formats: %w", err)
		}
	}

	table, err := loadRules(cfg, st, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		store:    st,
		registry: registry,
		rules:    table,
	}

	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := categorizer.NewGeminiClient(context.Background(), categorizer.GeminiConfig{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			Timeout:    time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			Attempts:   cfg.AI.Attempts,
			Categories: Categories(table),
		}, logger)
		if err != nil {
			return nil, err
		}
		c.aiClient = client
		c.closeAI = client.Close
		logger.Info("AI categorization enabled")
	} else {
		logger.Debug("AI categorization disabled")
	}

	logger.Debug("Container initialized",
		logging.F("formats", len(registry.Names())),
		logging.F("rules", table.Len()))
	return c, nil
}

func loadRules(cfg *config.Config, st store.Store, logger logging.Logger) (*rules.Table, error) {
	delimiter := ','
	if d := []rune(cfg.Rules.Delimiter); len(d) == 1 {
		delimiter = d[0]
	}

	name := cfg.Rules.File
	if name == "" {
		if _, err := st.FindConfigFile(DefaultRulesFile); err != nil {
			logger.Info("No rule file found, classifying with format overrides only")
			return rules.NewTable(), nil
		}
		name = DefaultRulesFile
	}

	table, err := rules.LoadFile(st, name, delimiter, logger)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("rule file not found: %s", name)
		}
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return table, nil
}

// Categories returns the distinct categories named by the rule table.
func Categories(table *rules.Table) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range table.Rules() {
		if r.Category.Set && r.Category.Value != "" && !seen[r.Category.Value] {
			seen[r.Category.Value] = true
			out = append(out, r.Category.Value)
		}
	}
	sort.Strings(out)
	return out
}

// Format returns the named descriptor.
func (c *Container) Format(name string) (*format.Descriptor, error) {
	return c.registry.Get(name)
}

// Classifier builds the classifier for desc.
func (c *Container) Classifier(desc *format.Descriptor) (*classifier.Classifier, error) {
	var opts []classifier.Option
	if c.aiClient != nil {
		opts = append(opts, classifier.WithAIClient(c.aiClient))
	}
	return classifier.New(c.rules, classifier.OptionsFromDescriptor(desc, c.config.Defaults.Payee), c.logger, opts...)
}

// Pipeline builds the conversion pipeline for the named format.
func (c *Container) Pipeline(name string) (*pipeline.Pipeline, error) {
	desc, err := c.registry.Get(name)
	if err != nil {
		return nil, err
	}
	cls, err := c.Classifier(desc)
	if err != nil {
		return nil, err
	}
	return pipeline.New(desc, cls, pipeline.OptionsFromConfig(c.config), c.logger)
}

// Writer builds the output writer for desc.
func (c *Container) Writer(desc *format.Descriptor, unclassifiedOnly bool) (*output.Writer, error) {
	opts, err := output.OptionsFromConfig(c.config, desc)
	if err != nil {
		return nil, err
	}
	opts.UnclassifiedOnly = unclassifiedOnly
	return output.NewWriter(opts, c.logger), nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the store used to locate rule and format files.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetRegistry returns the format registry.
func (c *Container) GetRegistry() *format.Registry {
	return c.registry
}

// GetRules returns the compiled rule table.
func (c *Container) GetRules() *rules.Table {
	return c.rules
}

// GetAIClient returns the container's AI client instance.
// Returns nil if AI is not enabled.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	if c.closeAI != nil {
		if err := c.closeAI(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	return nil
}
