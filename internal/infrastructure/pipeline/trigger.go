// Package pipeline simulates the storage-event trigger that drives claim
// enrichment.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
)

// DefaultDelay is the simulated storage-event latency between the blob
// write and the enricher picking it up.
const DefaultDelay = 500 * time.Millisecond

// Runner runs the enrichment pipeline for one claim.
type Runner interface {
	Run(ctx context.Context, claimID string) error
}

// Job is one scheduled trigger firing. Done closes after the runner's
// write-back completes, so callers can await the second phase
// deterministically instead of racing the timer.
type Job struct {
	ClaimID  string
	BlobPath string
	done     chan struct{}
	err      error
}

// Done returns a channel closed when the job has run to completion.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the job's outcome. Valid only after Done is closed.
func (j *Job) Err() error {
	return j.err
}

// Trigger schedules delayed pipeline runs, imitating a BlobCreated event
// feeding a serverless policy enricher. Jobs are never cancelled once
// scheduled; they always run to completion.
type Trigger struct {
	repo   infraClaims.ClaimRepository
	runner Runner
	delay  time.Duration
	logger *zap.Logger
}

// NewTrigger creates a trigger. A non-positive delay falls back to
// DefaultDelay.
func NewTrigger(repo infraClaims.ClaimRepository, runner Runner, delay time.Duration, logger *zap.Logger) *Trigger {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{repo: repo, runner: runner, delay: delay, logger: logger}
}

// Schedule queues a trigger firing for the claim and returns immediately.
// After the delay the trigger appends the BlobCreated and PolicyEnriched
// audit entries, then invokes the runner. A claim missing at fire time is
// a silent no-op.
func (t *Trigger) Schedule(claimID, blobPath string) *Job {
	job := &Job{ClaimID: claimID, BlobPath: blobPath, done: make(chan struct{})}

	t.logger.Debug("pipeline trigger scheduled",
		zap.String("claimId", claimID),
		zap.String("blobPath", blobPath),
		zap.Duration("delay", t.delay))

	go func() {
		defer close(job.done)
		time.Sleep(t.delay)
		job.err = t.fire(claimID, blobPath)
	}()

	return job
}

func (t *Trigger) fire(claimID, blobPath string) error {
	claim, err := t.repo.FindByID(claimID)
	if err != nil {
		if isNotFound(err) {
			t.logger.Debug("trigger fired for missing claim", zap.String("claimId", claimID))
			return nil
		}
		return err
	}

	claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionBlobCreated, blobPath)
	claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionPolicyEnriched, "")
	if err := t.repo.Save(claim); err != nil {
		return err
	}

	return t.runner.Run(context.Background(), claimID)
}

func isNotFound(err error) bool {
	return errors.Is(err, domainClaims.ErrNotFound)
}
