// Package workflow determines a claim's procedural stage from its event
// timeline and derives the recommended next action, its deadline and the
// escalation signal. The classifier is stateless: every call recomputes the
// state fresh from the claim snapshot and the supplied current date.
package workflow

import (
	"fmt"
	"time"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/money"
)

// StageRecord is one entry in a claim's reconstructed stage history.
type StageRecord struct {
	Stage       claims.Stage `json:"stage"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description,omitempty"`
}

// State is the derived workflow position of a claim.
type State struct {
	Stage               claims.Stage  `json:"stage"`
	NextAction          string        `json:"next_action"`
	NextActionDue       *time.Time    `json:"next_action_due,omitempty"`
	DaysUntilEscalation *int          `json:"days_until_escalation,omitempty"`
	Escalation          bool          `json:"escalation"`
	EscalationWarning   string        `json:"escalation_warning,omitempty"`
	StageHistory        []StageRecord `json:"stage_history"`
}

// Classifier computes workflow state using the configured escalation ladder.
type Classifier struct {
	rules config.RulesConfig
	calc  *money.Calculator
}

// NewClassifier creates a classifier sharing the given calculator.
func NewClassifier(rules config.RulesConfig, calc *money.Calculator) *Classifier {
	return &Classifier{rules: rules, calc: calc}
}

// eventStages maps timeline event types to the stage they evidence, used for
// both precedence scanning and history reconstruction.
var eventStages = map[claims.EventType]claims.Stage{
	claims.EventInvoiceIssued:      claims.StageDraft,
	claims.EventReminderSent:       claims.StageReminderSent,
	claims.EventFinalDemandSent:    claims.StageFinalDemand,
	claims.EventLBASent:            claims.StageLBASent,
	claims.EventCourtClaimFiled:    claims.StageCourtClaim,
	claims.EventJudgmentObtained:   claims.StageJudgment,
	claims.EventEnforcementStarted: claims.StageEnforcement,
	claims.EventPaymentReceived:    claims.StageSettled,
}

// Classify determines the claim's current workflow state as of now. The
// claim snapshot is never mutated.
func (c *Classifier) Classify(cl claims.Claim, now time.Time) State {
	daysOverdue := c.calc.DaysOverdue(cl.Invoice, now)
	stage := c.determineStage(cl, daysOverdue)

	state := State{
		Stage:        stage,
		NextAction:   c.nextAction(stage, daysOverdue),
		StageHistory: c.stageHistory(cl, stage, now),
	}

	if stage.Terminal() {
		return state
	}

	due := c.nextActionDue(cl, stage)
	if due == nil {
		return state
	}
	state.NextActionDue = due

	// The signed day count drives the escalation flag; the floored value is
	// only for display.
	signed := dates.SignedDays(dates.Truncate(now), *due)
	floored := signed
	if floored < 0 {
		floored = 0
	}
	state.DaysUntilEscalation = &floored
	state.Escalation = signed <= c.rules.EscalationWindowDays
	state.EscalationWarning = c.escalationWarning(signed)

	return state
}

// determineStage scans for the most advanced matching evidence, first match
// wins. Settled additionally requires the claim's paid flag: a
// payment_received event alone is insufficient.
func (c *Classifier) determineStage(cl claims.Claim, daysOverdue int) claims.Stage {
	if cl.Abandoned {
		return claims.StageAbandoned
	}
	if cl.Paid && cl.HasEvent(claims.EventPaymentReceived) {
		return claims.StageSettled
	}

	ladder := []claims.EventType{
		claims.EventEnforcementStarted,
		claims.EventJudgmentObtained,
		claims.EventCourtClaimFiled,
		claims.EventLBASent,
		claims.EventFinalDemandSent,
		claims.EventReminderSent,
	}
	for _, t := range ladder {
		if cl.HasEvent(t) {
			return eventStages[t]
		}
	}

	if daysOverdue > 0 {
		return claims.StageOverdue
	}
	return claims.StageDraft
}

// nextAction returns the recommended step for the stage. The pre-court
// stages are refined by how long the debt has been overdue, mirroring the
// reminder -> formal demand -> Letter Before Action -> court filing ladder.
func (c *Classifier) nextAction(stage claims.Stage, daysOverdue int) string {
	switch stage {
	case claims.StageDraft:
		return "Wait for the payment due date; no recovery action is required yet."
	case claims.StageOverdue:
		switch {
		case daysOverdue < 7:
			return "Send a polite payment reminder."
		case daysOverdue < 14:
			return "Send a formal payment reminder."
		case daysOverdue < 30:
			return "Send a final demand for payment."
		default:
			return "Send a Letter Before Action giving notice of court proceedings."
		}
	case claims.StageReminderSent:
		switch {
		case daysOverdue < 14:
			return "Await a response to the reminder, then chase by phone."
		case daysOverdue < 30:
			return "Send a final demand for payment."
		default:
			return "Send a Letter Before Action giving notice of court proceedings."
		}
	case claims.StageFinalDemand:
		if daysOverdue < 30 {
			return "Await a response to the final demand."
		}
		return "Send a Letter Before Action giving notice of court proceedings."
	case claims.StageLBASent:
		if daysOverdue < 30 {
			return "Wait out the Letter Before Action response period."
		}
		return "File the court claim (form N1) once the Letter Before Action period has expired."
	case claims.StageCourtClaim:
		return "Await the defendant's response; apply for default judgment if none arrives in time."
	case claims.StageJudgment:
		return "Await payment of the judgment debt; begin enforcement if it stays unpaid."
	case claims.StageEnforcement:
		return "Monitor enforcement and instruct further action if the debt remains unpaid."
	case claims.StageSettled:
		return "No further action; the claim is settled."
	case claims.StageAbandoned:
		return "No further action; the claim has been abandoned."
	default:
		return ""
	}
}

// nextActionDue anchors the deadline on the payment due date for pre-LBA
// stages and on the most recent matching timeline event afterwards. Returns
// nil when the anchor date is unavailable.
func (c *Classifier) nextActionDue(cl claims.Claim, stage claims.Stage) *time.Time {
	fromDue := func(offset int) *time.Time {
		due := c.calc.DueDate(cl.Invoice)
		if due == nil {
			return nil
		}
		d := dates.AddDays(*due, offset)
		return &d
	}
	fromEvent := func(t claims.EventType, offset int) *time.Time {
		event := cl.LatestEvent(t)
		if event == nil {
			return nil
		}
		d := dates.AddDays(dates.Truncate(event.Date), offset)
		return &d
	}

	switch stage {
	case claims.StageDraft:
		return fromDue(0)
	case claims.StageOverdue:
		return fromDue(c.rules.ReminderOffsetDays)
	case claims.StageReminderSent:
		return fromDue(c.rules.FinalDemandOffsetDays)
	case claims.StageFinalDemand:
		return fromDue(c.rules.LBAOffsetDays)
	case claims.StageLBASent:
		return fromEvent(claims.EventLBASent, c.rules.LBAWaitingDays)
	case claims.StageCourtClaim:
		return fromEvent(claims.EventCourtClaimFiled, c.rules.JudgmentWaitDays)
	case claims.StageJudgment:
		return fromEvent(claims.EventJudgmentObtained, c.rules.PaymentGraceDays)
	default:
		return nil
	}
}

// escalationWarning phrases the warning for overdue, due-today and due-soon
// deadlines. Outside the escalation window there is no warning.
func (c *Classifier) escalationWarning(signedDays int) string {
	switch {
	case signedDays < 0:
		return fmt.Sprintf("Next action is overdue by %d day(s).", -signedDays)
	case signedDays == 0:
		return "Next action is due today."
	case signedDays <= c.rules.EscalationWindowDays:
		return fmt.Sprintf("Next action is due in %d day(s).", signedDays)
	default:
		return ""
	}
}

// stageHistory maps each timeline event to its stage, sorted
// chronologically, and appends the current computed stage when the timeline
// does not already evidence it.
func (c *Classifier) stageHistory(cl claims.Claim, current claims.Stage, now time.Time) []StageRecord {
	history := make([]StageRecord, 0, len(cl.Events)+1)
	seen := make(map[claims.Stage]bool)

	for _, event := range cl.SortedEvents() {
		stage, ok := eventStages[event.Type]
		if !ok {
			continue
		}
		history = append(history, StageRecord{
			Stage:       stage,
			Date:        event.Date,
			Description: event.Description,
		})
		seen[stage] = true
	}

	if !seen[current] {
		history = append(history, StageRecord{
			Stage: current,
			Date:  dates.Truncate(now),
		})
	}
	return history
}
