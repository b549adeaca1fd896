// Package scheduler runs the periodic deadline sweep: it re-evaluates every
// stored claim against the current date, refreshes the stage metrics and
// logs escalation warnings. The sweep reads claims and writes logs and
// metrics only; claim records are never mutated.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/engine"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/metrics"
)

// ClaimLister is the read-only store surface the sweep requires.
type ClaimLister interface {
	List(ctx context.Context) ([]claims.Claim, error)
}

// Sweeper periodically re-evaluates stored claims.
type Sweeper struct {
	store     ClaimLister
	evaluator *engine.Engine
	collector *metrics.Collector
	clock     dates.Clock
	logger    *zap.Logger
	cron      *cron.Cron
}

// NewSweeper creates a deadline sweeper.
func NewSweeper(
	store ClaimLister,
	evaluator *engine.Engine,
	collector *metrics.Collector,
	clock dates.Clock,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		store:     store,
		evaluator: evaluator,
		collector: collector,
		clock:     clock,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the sweep on the given cron expression and runs one sweep
// immediately so metrics are populated at boot.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	go s.Sweep(context.Background())
	s.logger.Info("Deadline sweep scheduled", zap.String("cron", spec))
	return nil
}

// Stop halts the cron scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Deadline sweep stopped")
}

// Sweep evaluates every stored claim once against the current date.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.clock()
	list, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Deadline sweep failed to list claims", zap.Error(err))
		return
	}

	stageCounts := make(map[string]int)
	escalations := 0

	for _, cl := range list {
		started := time.Now()
		result := s.evaluator.Evaluate(cl, now)
		if s.collector != nil {
			s.collector.RecordEvaluation(string(result.Workflow.Stage), time.Since(started))
		}

		stageCounts[string(result.Workflow.Stage)]++
		if result.Workflow.Escalation {
			escalations++
			s.logger.Warn("Claim needs attention",
				zap.String("claim_id", cl.ID),
				zap.String("reference", cl.Reference),
				zap.String("stage", string(result.Workflow.Stage)),
				zap.String("next_action", result.Workflow.NextAction),
				zap.String("warning", result.Workflow.EscalationWarning))
		}
	}

	if s.collector != nil {
		s.collector.SetStageCounts(stageCounts)
		s.collector.SetEscalationsDue(escalations)
	}

	s.logger.Info("Deadline sweep complete",
		zap.Int("claims", len(list)),
		zap.Int("escalations", escalations))
}
