// Package pipeline orchestrates a generation run as a sequential state
// machine: Seeding, Expanding, Deriving, Validating, Exporting, Done.
// Base tables are synthesized, expanded through the generative model
// (degrading to replication on failure), dependent tables are derived
// from the expanded parents, and the final set is validated and exported
// as a CSV bundle. Any error other than a model failure aborts the run
// before export so no partial bundle is ever written.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/synthline-labs/synthline/internal/dag"
	"github.com/synthline-labs/synthline/internal/expand"
	"github.com/synthline-labs/synthline/internal/export"
	"github.com/synthline-labs/synthline/internal/postprocess"
	"github.com/synthline-labs/synthline/internal/schema"
	"github.com/synthline-labs/synthline/internal/state"
	"github.com/synthline-labs/synthline/internal/synth"
	"github.com/synthline-labs/synthline/internal/table"
)

// Stage is a phase of the generation pipeline.
type Stage string

const (
	StageSeeding    Stage = "seeding"
	StageExpanding  Stage = "expanding"
	StageDeriving   Stage = "deriving"
	StageValidating Stage = "validating"
	StageExporting  Stage = "exporting"
	StageDone       Stage = "done"
)

// Options configures a generation run.
type Options struct {
	Clients     int
	TeamMembers int
	Projects    int
	Multiplier  int
	Seed        int64 // 0 derives a seed from the clock
	OutputDir   string
	Now         time.Time // zero uses time.Now
}

// TableResult is the outcome of one table in a run.
type TableResult struct {
	Name      string
	BaseRows  int
	FinalRows int
	Method    expand.Method
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    string
	Seed     int64
	Tables   []TableResult
	Issues   []postprocess.Issue
	Manifest *export.Manifest
}

// SynthesizerFactory builds a synthesizer over a run's generator.
type SynthesizerFactory func(rng *rand.Rand, logger *slog.Logger) expand.Synthesizer

// Pipeline runs generation end to end.
type Pipeline struct {
	reg    *schema.Registry
	store  *state.SQLiteStore // nil disables run recording
	logger *slog.Logger

	newPrimary  SynthesizerFactory
	newFallback SynthesizerFactory

	stage Stage
}

// Option customizes a pipeline.
type Option func(*Pipeline)

// WithPrimaryFactory overrides the generative-model synthesizer.
func WithPrimaryFactory(f SynthesizerFactory) Option {
	return func(p *Pipeline) { p.newPrimary = f }
}

// WithFallbackFactory overrides the replication fallback.
func WithFallbackFactory(f SynthesizerFactory) Option {
	return func(p *Pipeline) { p.newFallback = f }
}

// New creates a pipeline over the given schema. A nil store disables run
// recording; a nil logger discards logs.
func New(reg *schema.Registry, store *state.SQLiteStore, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		reg:    reg,
		store:  store,
		logger: logger,
		newPrimary: func(rng *rand.Rand, logger *slog.Logger) expand.Synthesizer {
			return expand.NewMarginal(rng, logger)
		},
		newFallback: func(rng *rand.Rand, logger *slog.Logger) expand.Synthesizer {
			return expand.NewReplicator(rng, logger)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stage returns the pipeline's current stage.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) enter(stage Stage) {
	p.stage = stage
	p.logger.Info("entering stage", "stage", string(stage))
}

// Run executes a full generation run and exports the bundle.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	multiplier := opts.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	rng := rand.New(rand.NewSource(seed))
	result := &Result{Seed: seed}

	var runID string
	if p.store != nil {
		run, err := p.store.CreateRun(seed, multiplier)
		if err != nil {
			return nil, fmt.Errorf("recording run start: %w", err)
		}
		runID = run.ID
		result.RunID = runID
	}

	res, err := p.run(ctx, rng, now, multiplier, opts, result)
	if p.store != nil && runID != "" {
		status := state.RunStatusCompleted
		errMsg := ""
		total := 0
		if err != nil {
			status = state.RunStatusFailed
			errMsg = err.Error()
		} else {
			total = res.Manifest.TotalRecords
		}
		if cerr := p.store.CompleteRun(runID, status, opts.OutputDir, total, len(result.Issues), errMsg); cerr != nil {
			p.logger.Error("failed to record run completion", "error", cerr)
		}
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, rng *rand.Rand, now time.Time, multiplier int, opts Options, result *Result) (*Result, error) {
	// Seeding
	p.enter(StageSeeding)
	base := synth.NewBase(rng, p.reg, p.logger, now)
	clients, err := base.GenerateClients(opts.Clients)
	if err != nil {
		return nil, fmt.Errorf("seeding clients: %w", err)
	}
	members, err := base.GenerateTeamMembers(opts.TeamMembers)
	if err != nil {
		return nil, fmt.Errorf("seeding team members: %w", err)
	}

	// Expanding: only the base tables go through the synthesizer;
	// dependent tables are derived at full size from the expanded
	// parents, which keeps every foreign key resolvable.
	p.enter(StageExpanding)
	expander := expand.New(p.newPrimary(rng, p.logger), p.newFallback(rng, p.logger), p.logger)
	proc := postprocess.New(rng, p.logger)

	expandedClients, err := p.expandTable(ctx, expander, proc, clients, schema.TableClients, multiplier, result)
	if err != nil {
		return nil, err
	}
	expandedMembers, err := p.expandTable(ctx, expander, proc, members, schema.TableTeamMembers, multiplier, result)
	if err != nil {
		return nil, err
	}

	// Deriving
	p.enter(StageDeriving)
	dep := synth.NewDependent(rng, p.reg, p.logger, now)

	projects, err := dep.GenerateProjects(expandedClients, opts.Projects*multiplier)
	if err != nil {
		return nil, fmt.Errorf("deriving projects: %w", err)
	}
	assignments, err := dep.GenerateAssignments(projects, expandedMembers)
	if err != nil {
		return nil, fmt.Errorf("deriving assignments: %w", err)
	}
	tickets, err := dep.GenerateTickets(projects, expandedMembers, assignments)
	if err != nil {
		return nil, fmt.Errorf("deriving tickets: %w", err)
	}
	invoices, err := dep.GenerateInvoices(expandedClients, projects)
	if err != nil {
		return nil, fmt.Errorf("deriving invoices: %w", err)
	}
	contracts, err := dep.GenerateContracts(expandedClients)
	if err != nil {
		return nil, fmt.Errorf("deriving contracts: %w", err)
	}

	tables := map[string]*table.Table{
		schema.TableClients:     expandedClients,
		schema.TableTeamMembers: expandedMembers,
		schema.TableProjects:    projects,
		schema.TableAssignments: assignments,
		schema.TableTickets:     tickets,
		schema.TableInvoices:    invoices,
		schema.TableContracts:   contracts,
	}
	for _, name := range []string{schema.TableProjects, schema.TableAssignments, schema.TableTickets, schema.TableInvoices, schema.TableContracts} {
		p.recordTable(result, TableResult{
			Name:      name,
			BaseRows:  tables[name].NumRows(),
			FinalRows: tables[name].NumRows(),
			Method:    expand.MethodNone,
		})
	}

	// Validating
	p.enter(StageValidating)
	validator := postprocess.NewValidator(p.reg, p.logger)
	result.Issues = validator.Validate(tables)

	// Exporting
	p.enter(StageExporting)
	order, err := dag.GenerationOrder(p.reg)
	if err != nil {
		return nil, fmt.Errorf("resolving export order: %w", err)
	}
	exporter := export.New(p.logger)
	manifest, err := exporter.Export(opts.OutputDir, tables, order, result.Seed)
	if err != nil {
		return nil, fmt.Errorf("exporting bundle: %w", err)
	}
	result.Manifest = manifest

	p.enter(StageDone)
	p.logger.Info("run complete",
		"seed", result.Seed, "records", manifest.TotalRecords, "issues", len(result.Issues))
	return result, nil
}

// expandTable inflates one base table, repairs the result, and records
// the outcome.
func (p *Pipeline) expandTable(ctx context.Context, expander *expand.Expander, proc *postprocess.Processor, tbl *table.Table, name string, multiplier int, result *Result) (*table.Table, error) {
	def, ok := p.reg.Table(name)
	if !ok {
		return nil, fmt.Errorf("unknown table %s", name)
	}

	baseRows := tbl.NumRows()
	expanded, method, err := expander.Expand(ctx, tbl, def, multiplier)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", name, err)
	}

	if method != expand.MethodNone {
		expanded, err = proc.Process(expanded, tbl, def)
		if err != nil {
			return nil, fmt.Errorf("post-processing %s: %w", name, err)
		}
	}

	p.recordTable(result, TableResult{
		Name:      name,
		BaseRows:  baseRows,
		FinalRows: expanded.NumRows(),
		Method:    method,
	})
	return expanded, nil
}

func (p *Pipeline) recordTable(result *Result, tr TableResult) {
	result.Tables = append(result.Tables, tr)
	if p.store == nil || result.RunID == "" {
		return
	}
	if err := p.store.RecordTable(result.RunID, tr.Name, tr.BaseRows, tr.FinalRows, string(tr.Method)); err != nil {
		p.logger.Error("failed to record table run", "table", tr.Name, "error", err)
	}
}
