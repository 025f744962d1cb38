// Package standard turns translated ESLint rules into a Codacy coding
// standard: it reconciles them with the ESLint pattern catalog and pushes
// the result in batches.
package standard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/logger"
	"github.com/JNZader/eslintsync/internal/metrics"
)

// ErrNoPatterns is returned when no rule survived translation.
var ErrNoPatterns = errors.New("no enabled rules to configure")

// API is the subset of the Codacy client used by the synchronizer.
type API interface {
	CreateCodingStandard(ctx context.Context, name string, languages []string) (*codacy.CodingStandard, error)
	ListTools(ctx context.Context, standardID int64) ([]codacy.Tool, error)
	ListPatterns(ctx context.Context, standardID int64, toolUUID string, pageSize int) ([]codacy.CatalogPattern, error)
	UpdateTool(ctx context.Context, standardID int64, toolUUID string, update codacy.ToolUpdate) error
	DisableTool(ctx context.Context, standardID int64, toolUUID string) error
	PromoteCodingStandard(ctx context.Context, standardID int64) error
}

// Progress receives step and batch notifications.
type Progress interface {
	Step(name string)
	Batch(label string, index, total, size int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Step(string) {}
func (nopProgress) Batch(string, int, int, int) {}
func (nopProgress) Finish() {}

// Options configures a Synchronizer.
type Options struct {
	ToolUUID      string
	PatternPrefix string
	Languages     []string
	BatchSize     int
	PageSize      int
	Promote       bool
}

// Synchronizer drives the coding standard creation flow.
type Synchronizer struct {
	api      API
	opts     Options
	log      *logger.Logger
	metrics  *metrics.Collector
	progress Progress
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithProgress sets the progress receiver.
func WithProgress(p Progress) Option {
	return func(s *Synchronizer) { s.progress = p }
}

// New creates a Synchronizer.
func New(api API, opts Options, options ...Option) *Synchronizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	s := &Synchronizer{
		api:      api,
		opts:     opts,
		log:      logger.Nop(),
		metrics:  metrics.NewCollector(),
		progress: nopProgress{},
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Request describes the standard to create.
type Request struct {
	Name         string
	Organization string
	Provider     string
	Patterns     []eslint.Pattern
}

// Result is the outcome of a successful run. The JSON form is the result
// artifact written next to the configuration.
type Result struct {
	StandardID     int64            `json:"standard_id" yaml:"standard_id"`
	Name           string           `json:"name" yaml:"name"`
	Organization   string           `json:"organization" yaml:"organization"`
	Provider       string           `json:"provider" yaml:"provider"`
	PatternsCount  int              `json:"patterns_count" yaml:"patterns_count"`
	Patterns       []eslint.Pattern `json:"patterns" yaml:"patterns"`
	UnmatchedRules []string         `json:"unmatched_rules,omitempty" yaml:"unmatched_rules,omitempty"`

	Enabled     int           `json:"-" yaml:"-"`
	Disabled    int           `json:"-" yaml:"-"`
	Promoted    bool          `json:"-" yaml:"-"`
	Duration    time.Duration `json:"-" yaml:"-"`
	Diagnostics diag.List     `json:"-" yaml:"-"`
}

// Run creates the standard, disables every tool, enables ESLint with the
// reconciled patterns and promotes the standard. There is no rollback: a
// failure leaves the partially configured standard in place and the error
// names the standard id.
func (s *Synchronizer) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	start := time.Now()
	defer s.progress.Finish()

	s.progress.Step(fmt.Sprintf("Creating coding standard %q", req.Name))
	std, err := s.api.CreateCodingStandard(ctx, req.Name, s.opts.Languages)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("standard_id", std.ID)
	log.Info("coding standard created")

	result := &Result{
		StandardID:    std.ID,
		Name:          req.Name,
		Organization:  req.Organization,
		Provider:      req.Provider,
		PatternsCount: len(req.Patterns),
		Patterns:      req.Patterns,
	}

	s.progress.Step("Disabling all tools")
	if err := s.DisableAllTools(ctx, std.ID); err != nil {
		return result, fmt.Errorf("standard %d: %w", std.ID, err)
	}

	s.progress.Step("Enabling ESLint with configured patterns")
	plan, err := s.EnableLinter(ctx, std.ID, req.Patterns)
	if plan != nil {
		result.Enabled = len(plan.Enable)
		result.Disabled = len(plan.Disable)
		result.UnmatchedRules = plan.Unmatched
		result.Diagnostics = plan.Diagnostics
	}
	if err != nil {
		return result, fmt.Errorf("standard %d: %w", std.ID, err)
	}

	if s.opts.Promote {
		s.progress.Step("Promoting coding standard")
		if err := s.api.PromoteCodingStandard(ctx, std.ID); err != nil {
			return result, fmt.Errorf("standard %d: %w", std.ID, err)
		}
		result.Promoted = true
		log.Info("coding standard promoted")
	}

	result.Duration = time.Since(start)
	return result, nil
}

// DisableAllTools disables every tool of the standard, one request per tool.
func (s *Synchronizer) DisableAllTools(ctx context.Context, standardID int64) error {
	tools, err := s.api.ListTools(ctx, standardID)
	if err != nil {
		return err
	}
	s.log.Info("disabling %d tools", len(tools))

	for i, tool := range tools {
		if err := s.api.DisableTool(ctx, standardID, tool.UUID); err != nil {
			return err
		}
		s.progress.Batch("Disabling tools", i+1, len(tools), 1)
		s.log.Debug("disabled tool %s", tool.UUID)
	}
	return nil
}

// EnableLinter drains the linter catalog, reconciles it with patterns and
// applies the enable batches followed by the disable batches. The plan is
// returned even when applying it fails.
func (s *Synchronizer) EnableLinter(ctx context.Context, standardID int64, patterns []eslint.Pattern) (*Plan, error) {
	catalog, err := s.api.ListPatterns(ctx, standardID, s.opts.ToolUUID, s.opts.PageSize)
	if err != nil {
		return nil, err
	}
	s.log.Info("fetched %d catalog patterns", len(catalog))

	plan := Reconcile(catalog, patterns, s.opts.PatternPrefix)
	s.metrics.Counter(metrics.MetricRulesUnmatched).Add(int64(len(plan.Unmatched)))
	s.log.Info("enabling %d patterns, disabling %d others, %d rules unmatched",
		len(plan.Enable), len(plan.Disable), len(plan.Unmatched))

	if err := s.ApplyPatterns(ctx, standardID, "Enabling patterns", plan.Enable); err != nil {
		return plan, err
	}
	s.metrics.Counter(metrics.MetricPatternsEnabled).Add(int64(len(plan.Enable)))

	if err := s.ApplyPatterns(ctx, standardID, "Disabling patterns", plan.Disable); err != nil {
		return plan, err
	}
	s.metrics.Counter(metrics.MetricPatternsDisabled).Add(int64(len(plan.Disable)))
	return plan, nil
}

// ApplyPatterns sends updates in consecutive batches, keeping the tool
// enabled. It stops at the first failed batch.
func (s *Synchronizer) ApplyPatterns(ctx context.Context, standardID int64, label string, updates []codacy.PatternUpdate) error {
	batches := Batches(updates, s.opts.BatchSize)
	for i, batch := range batches {
		update := codacy.ToolUpdate{Enabled: true, Patterns: batch}
		if err := s.api.UpdateTool(ctx, standardID, s.opts.ToolUUID, update); err != nil {
			return fmt.Errorf("%s: batch %d of %d: %w", label, i+1, len(batches), err)
		}
		s.metrics.Counter(metrics.MetricBatchesSent).Inc()
		s.progress.Batch(label, i+1, len(batches), len(batch))
	}
	return nil
}
