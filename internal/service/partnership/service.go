package partnership

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
)

// Service implements partnership workflow business logic. All public methods
// are safe for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a partnership service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput holds the fields for opening a new negotiation.
type CreateInput struct {
	ProposedPrice float64 `json:"proposed_price"`
	ProposalNotes string  `json:"proposal_notes"`
	CampaignID    string  `json:"campaign_id"`
	ContactEmail  string  `json:"contact_email"`
}

// Create opens a new negotiation attempt for the influencer: workflow at
// step 1 in ACTIVE status, influencer moved to counter_proposal. Fails with
// ErrActiveWorkflowExists when the influencer already has an ACTIVE workflow.
func (s *Service) Create(ctx context.Context, influencerID string, input CreateInput) (*domain.PartnershipWorkflow, error) {
	if influencerID == "" {
		return nil, fmt.Errorf("influencer id is required")
	}
	if input.ProposedPrice < 0 {
		return nil, fmt.Errorf("proposed price cannot be negative")
	}

	w := &domain.PartnershipWorkflow{
		ID:            uuid.New().String(),
		InfluencerID:  influencerID,
		Status:        domain.WorkflowActive,
		CurrentStep:   domain.WorkflowFirstStep,
		AgreedPrice:   input.ProposedPrice,
		ProposalNotes: input.ProposalNotes,
		ContactEmail:  input.ContactEmail,
	}
	if input.CampaignID != "" {
		w.CampaignID = &input.CampaignID
	}

	if err := s.repo.Create(ctx, w, domain.InfluencerCounterProposal); err != nil {
		return nil, err
	}
	log.Printf("[partnership.Service] workflow %s opened for influencer %s", w.ID, influencerID)
	return w, nil
}

// Get returns a single workflow.
func (s *Service) Get(ctx context.Context, id string) (*domain.PartnershipWorkflow, error) {
	return s.repo.Get(ctx, id)
}

// ListByInfluencer returns all negotiation attempts for an influencer,
// newest first.
func (s *Service) ListByInfluencer(ctx context.Context, influencerID string) ([]domain.PartnershipWorkflow, error) {
	return s.repo.ListByInfluencer(ctx, influencerID)
}

// Accept records the influencer's acceptance of the current proposal:
// step 1 completes, the workflow advances to step 2 and the influencer
// becomes agreed. The acceptance notification is written to the outbox in
// the same transaction and delivered later, at-least-once.
func (s *Service) Accept(ctx context.Context, workflowID string) error {
	w, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != domain.WorkflowActive {
		return ErrWorkflowNotActive
	}
	if w.CurrentStep != domain.WorkflowFirstStep {
		return fmt.Errorf("%w: accept requires step 1, workflow is at step %d", ErrInvalidStep, w.CurrentStep)
	}

	inf, err := s.repo.GetInfluencer(ctx, w.InfluencerID)
	if err != nil {
		return err
	}

	now := s.now()
	step := 2
	stamp := 1
	status := domain.InfluencerAgreed
	t := Transition{
		SetStep:             &step,
		StampStep:           &stamp,
		StampTime:           now,
		InfluencerID:        w.InfluencerID,
		SetInfluencerStatus: &status,
		Notification:        s.buildNotification(w, inf, domain.NotifyProposalAccepted),
	}
	if err := s.repo.Apply(ctx, workflowID, t); err != nil {
		return fmt.Errorf("accept proposal: %w", err)
	}
	log.Printf("[partnership.Service] workflow %s: proposal accepted (R$ %.2f)", workflowID, w.AgreedPrice)
	return nil
}

// Renegotiate sends a new counter-proposal: the price is revised and the
// influencer returns to counter_proposal. Reachable both mid-negotiation and
// from an active partnership (the renegotiation cycle).
func (s *Service) Renegotiate(ctx context.Context, workflowID string, newPrice float64) error {
	if newPrice < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	w, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != domain.WorkflowActive {
		return ErrWorkflowNotActive
	}

	inf, err := s.repo.GetInfluencer(ctx, w.InfluencerID)
	if err != nil {
		return err
	}

	status := domain.InfluencerCounterProposal
	t := Transition{
		SetAgreedPrice:      &newPrice,
		InfluencerID:        w.InfluencerID,
		SetInfluencerStatus: &status,
		Notification:        s.buildNotification(w, inf, domain.NotifyCounterSent),
	}
	if err := s.repo.Apply(ctx, workflowID, t); err != nil {
		return fmt.Errorf("renegotiate: %w", err)
	}
	log.Printf("[partnership.Service] workflow %s: counter sent (R$ %.2f)", workflowID, newPrice)
	return nil
}

// Cancel terminates the workflow and the influencer's participation.
// Cancelling an already-cancelled workflow is rejected without side effects.
func (s *Service) Cancel(ctx context.Context, workflowID string) error {
	w, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status == domain.WorkflowCancelled {
		return ErrAlreadyCancelled
	}

	inf, err := s.repo.GetInfluencer(ctx, w.InfluencerID)
	if err != nil {
		return err
	}

	wfStatus := domain.WorkflowCancelled
	infStatus := domain.InfluencerCancelled
	t := Transition{
		SetWorkflowStatus:   &wfStatus,
		SetCancelledAt:      true,
		StampTime:           s.now(),
		InfluencerID:        w.InfluencerID,
		SetInfluencerStatus: &infStatus,
		Notification:        s.buildNotification(w, inf, domain.NotifyWorkflowCancel),
	}
	if err := s.repo.Apply(ctx, workflowID, t); err != nil {
		return fmt.Errorf("cancel workflow: %w", err)
	}
	log.Printf("[partnership.Service] workflow %s cancelled", workflowID)
	return nil
}

// CompleteStep marks the workflow's current step as done and advances it.
// Steps only move forward: completing any step other than the current one is
// rejected. Completing the final step closes the workflow as COMPLETED and
// activates the influencer; until then the influencer stays agreed.
func (s *Service) CompleteStep(ctx context.Context, workflowID string, step int) error {
	if step < domain.WorkflowFirstStep || step > domain.WorkflowLastStep {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	w, err := s.repo.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != domain.WorkflowActive {
		return ErrWorkflowNotActive
	}
	if step != w.CurrentStep {
		return fmt.Errorf("%w: workflow is at step %d, cannot complete step %d", ErrInvalidStep, w.CurrentStep, step)
	}

	now := s.now()
	t := Transition{
		StampStep:    &step,
		StampTime:    now,
		InfluencerID: w.InfluencerID,
	}
	if step < domain.WorkflowLastStep {
		next := step + 1
		t.SetStep = &next
	} else {
		done := domain.WorkflowCompleted
		t.SetWorkflowStatus = &done
		active := domain.InfluencerActive
		t.SetInfluencerStatus = &active
	}

	if err := s.repo.Apply(ctx, workflowID, t); err != nil {
		return fmt.Errorf("complete step %d: %w", step, err)
	}
	return nil
}

// PortalView is what the influencer sees through the self-service page.
type PortalView struct {
	InfluencerName string                      `json:"influencer_name"`
	Status         domain.InfluencerStatus     `json:"status"`
	Workflow       *domain.PartnershipWorkflow `json:"workflow"`
	WritableFields []string                    `json:"writable_fields"`
}

// PortalGet resolves a portal token to the influencer's active workflow.
func (s *Service) PortalGet(ctx context.Context, token string) (*PortalView, error) {
	inf, err := s.repo.GetInfluencerByPortalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	w, err := s.repo.GetActiveByInfluencer(ctx, inf.ID)
	if err != nil {
		return nil, err
	}
	return &PortalView{
		InfluencerName: inf.Name,
		Status:         inf.Status,
		Workflow:       w,
		WritableFields: AllowedPortalFields(w.CurrentStep),
	}, nil
}

// PortalUpdate applies an influencer's self-service edit. Only fields
// allowlisted for the workflow's current step may be written; anything else
// is rejected before any mutation happens.
func (s *Service) PortalUpdate(ctx context.Context, token string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}
	inf, err := s.repo.GetInfluencerByPortalToken(ctx, token)
	if err != nil {
		return err
	}
	w, err := s.repo.GetActiveByInfluencer(ctx, inf.ID)
	if err != nil {
		return err
	}
	if err := validatePortalFields(w.CurrentStep, fields); err != nil {
		return err
	}

	t := Transition{SetFields: fields, InfluencerID: inf.ID}
	if err := s.repo.Apply(ctx, w.ID, t); err != nil {
		return fmt.Errorf("portal update: %w", err)
	}
	log.Printf("[partnership.Service] workflow %s: portal update at step %d (%d fields)", w.ID, w.CurrentStep, len(fields))
	return nil
}

// buildNotification composes the outbox row announcing a workflow event.
// Subject/body are plain operator-tuned strings; outreach templates with
// Liquid placeholders live in the templates package and are used by the
// outreach endpoints, not here.
func (s *Service) buildNotification(w *domain.PartnershipWorkflow, inf *domain.Influencer, kind domain.NotificationKind) *domain.Notification {
	if inf.Email == "" {
		// No deliverable address; skip the outbox row rather than queue a
		// notification that can never send.
		return nil
	}
	n := &domain.Notification{
		ID:           uuid.New().String(),
		WorkflowID:   w.ID,
		InfluencerID: inf.ID,
		Kind:         kind,
		Recipient:    inf.Email,
		Status:       domain.NotificationPending,
	}
	switch kind {
	case domain.NotifyProposalAccepted:
		n.Subject = "Partnership confirmed — next steps"
		n.Body = fmt.Sprintf("Hi %s,\n\nGreat news: your partnership with Lumina is confirmed at R$ %.2f.\nWe'll reach out shortly with shipping details.\n\n— Lumina Partnerships", inf.Name, w.AgreedPrice)
	case domain.NotifyCounterSent:
		n.Subject = "Updated proposal from Lumina"
		n.Body = fmt.Sprintf("Hi %s,\n\nWe've sent you an updated proposal. Please review it on your portal page.\n\n— Lumina Partnerships", inf.Name)
	case domain.NotifyWorkflowCancel:
		n.Subject = "Partnership update"
		n.Body = fmt.Sprintf("Hi %s,\n\nYour current partnership process with Lumina has been closed. We hope to work together in the future.\n\n— Lumina Partnerships", inf.Name)
	}
	return n
}
