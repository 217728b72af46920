package domain

import "time"

// WorkflowStatus enumerates the lifecycle states of a partnership workflow.
type WorkflowStatus string

const (
	WorkflowActive    WorkflowStatus = "active"
	WorkflowCancelled WorkflowStatus = "cancelled"
	WorkflowCompleted WorkflowStatus = "completed"
)

// Workflow step bounds. Steps advance monotonically from first to last.
const (
	WorkflowFirstStep = 1
	WorkflowLastStep  = 5
)

// PartnershipWorkflow is one negotiation attempt tied to an influencer.
// Renegotiation after completion creates a new workflow; at most one may be
// ACTIVE per influencer at a time (enforced at creation).
type PartnershipWorkflow struct {
	ID           string         `json:"id" db:"id"`
	InfluencerID string         `json:"influencer_id" db:"influencer_id"`
	CampaignID   *string        `json:"campaign_id" db:"campaign_id"`
	Status       WorkflowStatus `json:"status" db:"status"`

	// CurrentStep is 1..5 and never decreases within a workflow:
	//   1 proposal / counter-proposal negotiation
	//   2 terms confirmation (address, contacts)
	//   3 product shipment
	//   4 content delivery
	//   5 payment settlement
	CurrentStep int `json:"current_step" db:"current_step"`

	AgreedPrice     float64 `json:"agreed_price" db:"agreed_price"`
	ProposalNotes   string  `json:"proposal_notes" db:"proposal_notes"`
	ShippingAddress string  `json:"shipping_address" db:"shipping_address"`
	ContactEmail    string  `json:"contact_email" db:"contact_email"`
	ContactPhone    string  `json:"contact_phone" db:"contact_phone"`
	CouponCode      string  `json:"coupon_code" db:"coupon_code"`

	Step1CompletedAt *time.Time `json:"step1_completed_at" db:"step1_completed_at"`
	Step2CompletedAt *time.Time `json:"step2_completed_at" db:"step2_completed_at"`
	Step3CompletedAt *time.Time `json:"step3_completed_at" db:"step3_completed_at"`
	Step4CompletedAt *time.Time `json:"step4_completed_at" db:"step4_completed_at"`
	Step5CompletedAt *time.Time `json:"step5_completed_at" db:"step5_completed_at"`

	CancelledAt *time.Time `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal returns true if the workflow is in a final state.
func (w *PartnershipWorkflow) IsTerminal() bool {
	return w.Status == WorkflowCancelled || w.Status == WorkflowCompleted
}

// StepCompletedAt returns the completion timestamp for the given step,
// or nil if the step is out of range or not yet completed.
func (w *PartnershipWorkflow) StepCompletedAt(step int) *time.Time {
	switch step {
	case 1:
		return w.Step1CompletedAt
	case 2:
		return w.Step2CompletedAt
	case 3:
		return w.Step3CompletedAt
	case 4:
		return w.Step4CompletedAt
	case 5:
		return w.Step5CompletedAt
	}
	return nil
}

// NotificationKind labels the workflow events that trigger an outbound email.
type NotificationKind string

const (
	NotifyProposalAccepted NotificationKind = "proposal_accepted"
	NotifyCounterSent      NotificationKind = "counter_sent"
	NotifyWorkflowCancel   NotificationKind = "workflow_cancelled"
)

// NotificationStatus tracks outbox dispatch state.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is an outbox row recording a workflow email to be delivered
// at-least-once by the dispatcher. It is written in the same transaction as
// the status change it announces; delivery is best-effort and never rolls
// back the transition.
type Notification struct {
	ID           string             `json:"id" db:"id"`
	WorkflowID   string             `json:"workflow_id" db:"workflow_id"`
	InfluencerID string             `json:"influencer_id" db:"influencer_id"`
	Kind         NotificationKind   `json:"kind" db:"kind"`
	Recipient    string             `json:"recipient" db:"recipient"`
	Subject      string             `json:"subject" db:"subject"`
	Body         string             `json:"body" db:"body"`
	Status       NotificationStatus `json:"status" db:"status"`
	Attempts     int                `json:"attempts" db:"attempts"`
	LastError    string             `json:"last_error" db:"last_error"`
	SentAt       *time.Time         `json:"sent_at" db:"sent_at"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
