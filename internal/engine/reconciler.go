package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/eitrtech/azurestate/internal/acct"
	"github.com/eitrtech/azurestate/internal/config"
	"github.com/eitrtech/azurestate/internal/driver"
	"github.com/eitrtech/azurestate/internal/logger"
	"github.com/eitrtech/azurestate/internal/model"
	azerrors "github.com/eitrtech/azurestate/pkg/errors"
	"github.com/eitrtech/azurestate/pkg/propdiff"
)

// CredentialResolver resolves a named profile into a credential. The engine
// borrows the credential read-only for the duration of one reconciliation.
type CredentialResolver interface {
	Resolve(profile string) (*acct.Credential, error)
}

// Options configures a Reconciler.
type Options struct {
	// MaxRetries is the retry ceiling for transient errors; a driver call is
	// attempted at most MaxRetries+1 times.
	MaxRetries int
	// RetryBaseDelay seeds the exponential backoff between retries.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps the backoff.
	RetryMaxDelay time.Duration
	// Timeout bounds each driver call, including provisioning polls. Zero
	// means no per-call bound beyond the caller's context.
	Timeout time.Duration
	// DryRun predicts actions and diffs without calling driver mutators.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 500 * time.Millisecond
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = 30 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	return o
}

// Reconciler converges one descriptor at a time: resolve credentials, observe
// remote state, decide, and apply the minimal corrective call. Every
// reconciliation is stateless given its inputs and the remote side's truth.
type Reconciler struct {
	resolver CredentialResolver
	opts     Options
	log      *logger.Logger
}

// New creates a Reconciler.
func New(resolver CredentialResolver, opts Options, log *logger.Logger) *Reconciler {
	return &Reconciler{resolver: resolver, opts: opts.withDefaults(), log: log}
}

// Reconcile runs the state machine for a single descriptor and always returns
// a result; failures are carried in the result rather than a bare error so
// one descriptor's failure never blocks the rest of a batch.
func (r *Reconciler) Reconcile(ctx context.Context, rsrc *config.Resource, defaultProfile string) *model.ReconcileResult {
	start := time.Now()
	res := &model.ReconcileResult{
		DescriptorID: rsrc.ID,
		Timestamp:    start,
		Action:       model.ActionNoOp,
	}

	fail := func(err error) *model.ReconcileResult {
		res.Outcome = model.OutcomeFailed
		res.Err = err
		res.ErrKind = azerrors.Kind(err)
		res.Comment = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	cred, err := r.resolver.Resolve(rsrc.EffectiveProfile(defaultProfile))
	if err != nil {
		res.Identity = model.Identity{Kind: rsrc.Kind, ResourceGroup: rsrc.ResourceGroup, Name: rsrc.Name}
		return fail(err)
	}

	drv, err := driver.Get(rsrc.Kind)
	if err != nil {
		res.Identity = rsrc.Identity(cred.SubscriptionID)
		return fail(azerrors.NewValidationError("kind", err.Error(), err))
	}

	id := rsrc.Identity(cred.SubscriptionID)
	res.Identity = id
	log := r.log.WithResource(id)

	var observed *model.Observed
	err = r.withRetry(ctx, log, id.String(), "fetch", func(callCtx context.Context) error {
		var fetchErr error
		observed, fetchErr = drv.Fetch(callCtx, cred, id)
		return fetchErr
	})

	found := err == nil
	if err != nil && !azerrors.IsNotFound(err) {
		log.Error(err, "observe failed")
		return fail(err)
	}

	if rsrc.Absent() {
		return r.reconcileAbsent(ctx, res, drv, cred, id, found, log, start)
	}
	return r.reconcilePresent(ctx, res, drv, cred, rsrc, id, observed, found, log, start)
}

func (r *Reconciler) reconcilePresent(
	ctx context.Context,
	res *model.ReconcileResult,
	drv driver.Driver,
	cred *acct.Credential,
	rsrc *config.Resource,
	id model.Identity,
	observed *model.Observed,
	found bool,
	log *logger.Logger,
	start time.Time,
) *model.ReconcileResult {
	if !found {
		res.Action = model.ActionCreate
		if r.opts.DryRun {
			return planned(res, true, fmt.Sprintf("%s would be created.", id), start)
		}

		err := r.withRetry(ctx, log, id.String(), "create", func(callCtx context.Context) error {
			created, createErr := drv.Create(callCtx, cred, rsrc)
			if createErr == nil {
				res.Observed = created
			}
			return createErr
		})
		if err != nil {
			log.Error(err, "create failed")
			return failWith(res, err, start)
		}

		log.Info("created")
		return converged(res, true, fmt.Sprintf("%s has been created.", id), start)
	}

	diff := propdiff.Compute(rsrc.Properties(), observed.Properties)
	res.Diff = diff
	res.Observed = observed

	if diff.Empty() {
		log.Debug("no drift detected")
		return converged(res, false, fmt.Sprintf("%s is already present.", id), start)
	}

	res.Action = model.ActionUpdate
	if r.opts.DryRun {
		return planned(res, true, fmt.Sprintf("%s would be updated.", id), start)
	}

	err := r.withRetry(ctx, log, id.String(), "update", func(callCtx context.Context) error {
		updated, updateErr := drv.Update(callCtx, cred, rsrc, diff)
		if updateErr == nil {
			res.Observed = updated
		}
		return updateErr
	})
	if err != nil {
		log.Error(err, "update failed")
		return failWith(res, err, start)
	}

	log.WithFields(map[string]any{"properties": diff.Properties()}).Info("updated")
	return converged(res, true, fmt.Sprintf("%s has been updated.", id), start)
}

func (r *Reconciler) reconcileAbsent(
	ctx context.Context,
	res *model.ReconcileResult,
	drv driver.Driver,
	cred *acct.Credential,
	id model.Identity,
	found bool,
	log *logger.Logger,
	start time.Time,
) *model.ReconcileResult {
	if !found {
		log.Debug("already absent")
		return converged(res, false, fmt.Sprintf("%s is already absent.", id), start)
	}

	res.Action = model.ActionDelete
	if r.opts.DryRun {
		return planned(res, true, fmt.Sprintf("%s would be deleted.", id), start)
	}

	err := r.withRetry(ctx, log, id.String(), "delete", func(callCtx context.Context) error {
		return drv.Delete(callCtx, cred, id)
	})
	if err != nil {
		log.Error(err, "delete failed")
		return failWith(res, err, start)
	}

	log.Info("deleted")
	return converged(res, true, fmt.Sprintf("%s has been deleted.", id), start)
}

// withRetry invokes fn, retrying transient errors with bounded exponential
// backoff up to the configured ceiling. Any other error returns immediately.
// Resource names the identity so failures stay attributable per resource.
func (r *Reconciler) withRetry(ctx context.Context, log *logger.Logger, resource, op string, fn func(context.Context) error) error {
	delay := r.opts.RetryBaseDelay

	for attempt := 0; ; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if r.opts.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		}
		err := fn(callCtx)
		if cancel != nil {
			cancel()
		}

		if err == nil || !azerrors.IsTransient(err) {
			return err
		}
		if attempt >= r.opts.MaxRetries {
			return err
		}

		log.WithFields(map[string]any{"op": op, "attempt": attempt + 1, "backoff": delay.String()}).Warn("transient error, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return azerrors.NewExecutionError(resource, ctx.Err())
		case <-timer.C:
		}

		delay *= 2
		if delay > r.opts.RetryMaxDelay {
			delay = r.opts.RetryMaxDelay
		}
	}
}

func converged(res *model.ReconcileResult, changed bool, comment string, start time.Time) *model.ReconcileResult {
	res.Outcome = model.OutcomeConverged
	res.Changed = changed
	res.Comment = comment
	res.Duration = time.Since(start)
	return res
}

func planned(res *model.ReconcileResult, changed bool, comment string, start time.Time) *model.ReconcileResult {
	res.Outcome = model.OutcomePlanned
	res.Changed = changed
	res.Comment = comment
	res.Duration = time.Since(start)
	return res
}

func failWith(res *model.ReconcileResult, err error, start time.Time) *model.ReconcileResult {
	res.Outcome = model.OutcomeFailed
	res.Err = err
	res.ErrKind = azerrors.Kind(err)
	res.Comment = err.Error()
	res.Duration = time.Since(start)
	return res
}
