package claims

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyCategory distinguishes the statutory regime that applies to a claim.
type PartyCategory string

const (
	PartyIndividual PartyCategory = "individual"
	PartyBusiness   PartyCategory = "business"
)

// SolvencyStatus is the recorded Companies House style status of a party.
type SolvencyStatus string

const (
	SolvencyActive    SolvencyStatus = "active"
	SolvencyInsolvent SolvencyStatus = "insolvent"
	SolvencyDissolved SolvencyStatus = "dissolved"
	SolvencyUnknown   SolvencyStatus = "unknown"
)

// EventType is the closed set of timeline event tags. Stage classification
// keys on these tags only, never on free-text descriptions.
type EventType string

const (
	EventInvoiceIssued      EventType = "invoice_issued"
	EventReminderSent       EventType = "reminder_sent"
	EventFinalDemandSent    EventType = "final_demand_sent"
	EventLBASent            EventType = "lba_sent"
	EventCourtClaimFiled    EventType = "court_claim_filed"
	EventJudgmentObtained   EventType = "judgment_obtained"
	EventEnforcementStarted EventType = "enforcement_started"
	EventPaymentReceived    EventType = "payment_received"
)

// Stage is a claim's procedural stage, ordered from least to most advanced.
type Stage string

const (
	StageDraft        Stage = "draft"
	StageOverdue      Stage = "overdue"
	StageReminderSent Stage = "reminder_sent"
	StageFinalDemand  Stage = "final_demand"
	StageLBASent      Stage = "lba_sent"
	StageCourtClaim   Stage = "court_claim"
	StageJudgment     Stage = "judgment"
	StageEnforcement  Stage = "enforcement"
	StageSettled      Stage = "settled"
	StageAbandoned    Stage = "abandoned"
)

// Terminal reports whether no further action is ever recommended for the stage.
func (s Stage) Terminal() bool {
	return s == StageSettled || s == StageAbandoned
}

// Party is one of the two counterparties on a claim.
type Party struct {
	Category      PartyCategory  `json:"category"`
	Name          string         `json:"name"`
	AddressLine1  string         `json:"address_line1"`
	AddressLine2  string         `json:"address_line2,omitempty"`
	City          string         `json:"city"`
	Postcode      string         `json:"postcode"`
	CompanyNumber string         `json:"company_number,omitempty"`
	Solvency      SolvencyStatus `json:"solvency,omitempty"`
}

// IsBusiness reports whether the party is a business entity.
func (p Party) IsBusiness() bool {
	return p.Category == PartyBusiness
}

// SolvencyOrUnknown returns the recorded solvency, defaulting to unknown
// when the field was never populated.
func (p Party) SolvencyOrUnknown() SolvencyStatus {
	if p.Solvency == "" {
		return SolvencyUnknown
	}
	return p.Solvency
}

// HasName reports whether the party carries a usable name. "Unknown" is a
// data-entry placeholder and counts as absent for informational scoring.
func (p Party) HasName() bool {
	name := strings.TrimSpace(p.Name)
	return name != "" && !strings.EqualFold(name, "unknown")
}

// Invoice holds the financial facts a claim is built on.
type Invoice struct {
	Number      string          `json:"number"`
	IssueDate   *time.Time      `json:"issue_date,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

// TimelineEvent is a dated, typed occurrence in a claim's history. Events are
// immutable once recorded; the collection is insertion-ordered and consumers
// must sort by date before use.
type TimelineEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// NewTimelineEvent builds an event with a fresh identifier.
func NewTimelineEvent(t EventType, date time.Time, description string) TimelineEvent {
	return TimelineEvent{
		ID:          uuid.New().String(),
		Type:        t,
		Date:        date,
		Description: description,
	}
}

// Claim is the record the engine computes over. The engine treats a claim as
// an immutable snapshot: every evaluation returns new result values and
// never writes back into the claim.
type Claim struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Claimant  Party           `json:"claimant"`
	Defendant Party           `json:"defendant"`
	Invoice   Invoice         `json:"invoice"`
	Events    []TimelineEvent `json:"events"`
	Paid      bool            `json:"paid"`
	Abandoned bool            `json:"abandoned"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsB2B reports whether both counterparties are business entities, which
// selects the commercial interest and compensation regime.
func (c Claim) IsB2B() bool {
	return c.Claimant.IsBusiness() && c.Defendant.IsBusiness()
}

// SortedEvents returns the timeline sorted by date ascending. The stored
// slice is left untouched.
func (c Claim) SortedEvents() []TimelineEvent {
	events := make([]TimelineEvent, len(c.Events))
	copy(events, c.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// HasEvent reports whether any event of the given type is on the timeline.
func (c Claim) HasEvent(t EventType) bool {
	for _, e := range c.Events {
		if e.Type == t {
			return true
		}
	}
	return false
}

// LatestEvent returns the most recent event of the given type, or nil.
func (c Claim) LatestEvent(t EventType) *TimelineEvent {
	var latest *TimelineEvent
	for i := range c.Events {
		e := c.Events[i]
		if e.Type != t {
			continue
		}
		if latest == nil || e.Date.After(latest.Date) {
			latest = &e
		}
	}
	return latest
}
