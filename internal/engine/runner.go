package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/logger"
	"github.com/eitrtech/azurestate/internal/model"
)

// RunReport aggregates per-descriptor outcomes for one batch run.
type RunReport struct {
	RunID   string
	Name    string
	DryRun  bool
	Results []model.ReconcileResult
}

// Failed counts descriptors that reached the Failed outcome.
func (r *RunReport) Failed() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Outcome == model.OutcomeFailed {
			n++
		}
	}
	return n
}

// Changed counts descriptors whose reconciliation applied (or, in dry-run,
// predicted) a change.
func (r *RunReport) Changed() int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Changed {
			n++
		}
	}
	return n
}

// HasFailures reports whether any descriptor failed.
func (r *RunReport) HasFailures() bool {
	return r.Failed() > 0
}

// Runner reconciles a batch of descriptors. Independent identities run
// concurrently under a bounded worker pool; descriptors naming the same
// identity are serialized with a per-identity lock.
type Runner struct {
	reconciler *Reconciler
	parallel   int
	log        *logger.Logger
}

// NewRunner creates a Runner with the given concurrency width.
func NewRunner(reconciler *Reconciler, parallel int, log *logger.Logger) *Runner {
	if parallel <= 0 {
		parallel = 4
	}
	return &Runner{reconciler: reconciler, parallel: parallel, log: log}
}

// Run reconciles every descriptor in the document and returns results in
// descriptor order. A failing descriptor never blocks the others.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) *RunReport {
	report := &RunReport{
		RunID:   uuid.NewString(),
		Name:    cfg.Name,
		DryRun:  r.reconciler.opts.DryRun,
		Results: make([]model.ReconcileResult, len(cfg.Resources)),
	}

	log := r.log.WithRun(report.RunID)
	log.WithFields(map[string]any{"resources": len(cfg.Resources), "dry_run": report.DryRun}).Info("starting run")

	locks := make(map[string]*sync.Mutex, len(cfg.Resources))
	for i := range cfg.Resources {
		key := identityLockKey(&cfg.Resources[i], cfg.Profile)
		if _, ok := locks[key]; !ok {
			locks[key] = &sync.Mutex{}
		}
	}

	pool := make(chan struct{}, r.parallel)
	var wg sync.WaitGroup

	for i := range cfg.Resources {
		wg.Add(1)
		go func(idx int, rsrc *config.Resource) {
			defer wg.Done()

			pool <- struct{}{}
			defer func() { <-pool }()

			lock := locks[identityLockKey(rsrc, cfg.Profile)]
			lock.Lock()
			defer lock.Unlock()

			res := r.reconciler.Reconcile(ctx, rsrc, cfg.Profile)
			report.Results[idx] = *res
		}(i, &cfg.Resources[i])
	}

	wg.Wait()

	log.WithFields(map[string]any{"changed": report.Changed(), "failed": report.Failed()}).Info("run complete")
	return report
}

// identityLockKey keys the per-identity serialization lock. The subscription
// is not known before credential resolution, so the effective profile stands
// in for it; one profile maps to one subscription, and profile defaulting is
// resolved so an omitted profile and an explicit default take the same lock.
func identityLockKey(rsrc *config.Resource, documentProfile string) string {
	return rsrc.Identity(rsrc.EffectiveProfile(documentProfile)).Key()
}
