package application

import (
	"context"
	"errors"
	"time"

	"fanhunt/domain/entities"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// TransactionPolicy bounds how long and how often a transaction is retried
type TransactionPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBudget    time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultTransactionPolicy returns the policy used when nothing is configured
func DefaultTransactionPolicy() TransactionPolicy {
	return TransactionPolicy{
		MaxAttempts:    5,
		AttemptTimeout: 5 * time.Second,
		RetryBudget:    10 * time.Second,
		InitialBackoff: 25 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// Detail set on errors from a commit whose result could not be observed.
// The transaction may have been applied, so it is never retried.
const (
	DetailOutcome  = "outcome"
	OutcomeUnknown = "unknown"
)

// TxFunc is a read-decide-write function run inside a unit of work.
// Returning an error means nothing it wrote is kept.
type TxFunc func(ctx context.Context, uow UnitOfWork) error

// TransactionRunner executes functions in a fresh transaction per attempt and
// retries serialization conflicts and attempt timeouts within the policy.
type TransactionRunner struct {
	uowFactory UnitOfWorkFactory
	policy     TransactionPolicy
	metrics    MetricsRecorder
}

// NewTransactionRunner creates a new transaction runner
func NewTransactionRunner(uowFactory UnitOfWorkFactory, policy TransactionPolicy, metrics MetricsRecorder) *TransactionRunner {
	defaults := DefaultTransactionPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = defaults.AttemptTimeout
	}
	if policy.RetryBudget <= 0 {
		policy.RetryBudget = defaults.RetryBudget
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = defaults.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = defaults.MaxBackoff
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}

	return &TransactionRunner{
		uowFactory: uowFactory,
		policy:     policy,
		metrics:    metrics,
	}
}

// Policy returns the effective retry policy
func (r *TransactionRunner) Policy() TransactionPolicy {
	return r.policy
}

// Run executes fn in a serializable read-write transaction
func (r *TransactionRunner) Run(ctx context.Context, operation string, fn TxFunc) error {
	return r.run(ctx, operation, r.uowFactory.Create, fn)
}

// RunReadOnly executes fn against a single read-only snapshot
func (r *TransactionRunner) RunReadOnly(ctx context.Context, operation string, fn TxFunc) error {
	return r.run(ctx, operation, r.uowFactory.CreateReadOnly, fn)
}

func (r *TransactionRunner) run(ctx context.Context, operation string, newUow func() UnitOfWork, fn TxFunc) error {
	start := time.Now()
	attempts := 0

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.InitialBackoff
	exp.MaxInterval = r.policy.MaxBackoff
	exp.MaxElapsedTime = r.policy.RetryBudget
	policy := backoff.WithContext(
		backoff.WithMaxRetries(exp, uint64(r.policy.MaxAttempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(func() error {
		attempts++
		err := r.attempt(ctx, newUow, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() == nil && shouldRetry(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   attempts,
			"wait":      wait,
			"error":     err,
		}).Warn("Transaction attempt failed, retrying")
	})

	err = finalError(ctx, err, attempts)
	r.metrics.RecordTransaction(operation, OutcomeOf(err), attempts, time.Since(start))

	if err != nil && shouldRetry(err) {
		log.WithFields(log.Fields{
			"operation": operation,
			"attempts":  attempts,
			"error":     err,
		}).Error("Transaction retries exhausted")
	}
	return err
}

// attempt runs fn once in its own unit of work under the attempt deadline
func (r *TransactionRunner) attempt(ctx context.Context, newUow func() UnitOfWork, fn TxFunc) error {
	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
	defer cancel()

	uow := newUow()
	if err := uow.Begin(attemptCtx); err != nil {
		return classifyError(attemptCtx, err)
	}
	// Rollback after a successful commit does nothing
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Warn("Failed to roll back transaction")
		}
	}()

	if err := fn(attemptCtx, uow); err != nil {
		return classifyError(attemptCtx, err)
	}

	if err := uow.Commit(); err != nil {
		return commitError(attemptCtx, err)
	}
	return nil
}

// commitError classifies a failed commit. An error reported by the server
// means the transaction was rolled back; a timeout or a lost connection
// leaves the outcome unknown.
func commitError(ctx context.Context, err error) error {
	classified := classifyError(ctx, err)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classified
	}
	switch kind := entities.KindOf(classified); kind {
	case entities.KindTimeout, entities.KindStoreUnavailable:
		return entities.WrapLedgerError(kind, causeOf(classified), map[string]any{
			DetailOutcome: OutcomeUnknown,
		})
	}
	return classified
}

// classifyError gives every attempt failure a ledger kind. Errors that
// already carry one pass through unchanged.
func classifyError(ctx context.Context, err error) error {
	if entities.IsLedgerError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return entities.WrapLedgerError(entities.KindTimeout, err, nil)
	}
	return entities.WrapLedgerError(entities.KindStoreUnavailable, err, nil)
}

// shouldRetry allows conflicts and attempt timeouts hit before commit.
// Both leave nothing applied.
func shouldRetry(err error) bool {
	if OutcomeIsUnknown(err) {
		return false
	}
	kind := entities.KindOf(err)
	return kind.Retryable() || kind == entities.KindTimeout
}

// finalError shapes the error returned to callers once retrying has stopped
func finalError(ctx context.Context, err error, attempts int) error {
	if err == nil {
		return nil
	}

	kind := entities.KindOf(err)
	infrastructural := kind == "" || kind == entities.KindTimeout ||
		kind == entities.KindTransactionConflict || kind == entities.KindStoreUnavailable

	if ctx.Err() != nil && infrastructural {
		return entities.WrapLedgerError(entities.KindTimeout, ctx.Err(), withAttempts(err, attempts))
	}

	switch kind {
	case entities.KindTransactionConflict, entities.KindTimeout:
		return entities.WrapLedgerError(kind, causeOf(err), withAttempts(err, attempts))
	case "":
		return entities.WrapLedgerError(entities.KindStoreUnavailable, err, nil)
	}
	return err
}

// OutcomeIsUnknown reports whether err came from a commit that may have been applied
func OutcomeIsUnknown(err error) bool {
	return entities.DetailsOf(err)[DetailOutcome] == OutcomeUnknown
}

func withAttempts(err error, attempts int) map[string]any {
	details := map[string]any{"attempts": attempts}
	for k, v := range entities.DetailsOf(err) {
		details[k] = v
	}
	return details
}

func causeOf(err error) error {
	var le *entities.LedgerError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err
	}
	return err
}
