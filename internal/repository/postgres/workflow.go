package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/partnership"
)

// WorkflowRepo implements partnership.Repository against PostgreSQL.
type WorkflowRepo struct{ db *sql.DB }

// NewWorkflowRepo creates a Postgres-backed workflow repository.
func NewWorkflowRepo(db *sql.DB) *WorkflowRepo { return &WorkflowRepo{db: db} }

const workflowColumns = `id, influencer_id, campaign_id, status, current_step,
       agreed_price, COALESCE(proposal_notes,''), COALESCE(shipping_address,''),
       COALESCE(contact_email,''), COALESCE(contact_phone,''), COALESCE(coupon_code,''),
       step1_completed_at, step2_completed_at, step3_completed_at,
       step4_completed_at, step5_completed_at,
       cancelled_at, created_at, updated_at`

func scanWorkflow(row interface{ Scan(...any) error }) (*domain.PartnershipWorkflow, error) {
	w := &domain.PartnershipWorkflow{}
	err := row.Scan(
		&w.ID, &w.InfluencerID, &w.CampaignID, &w.Status, &w.CurrentStep,
		&w.AgreedPrice, &w.ProposalNotes, &w.ShippingAddress,
		&w.ContactEmail, &w.ContactPhone, &w.CouponCode,
		&w.Step1CompletedAt, &w.Step2CompletedAt, &w.Step3CompletedAt,
		&w.Step4CompletedAt, &w.Step5CompletedAt,
		&w.CancelledAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *WorkflowRepo) Get(ctx context.Context, id string) (*domain.PartnershipWorkflow, error) {
	w, err := scanWorkflow(r.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM partnership_workflows WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, partnership.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return w, nil
}

func (r *WorkflowRepo) GetActiveByInfluencer(ctx context.Context, influencerID string) (*domain.PartnershipWorkflow, error) {
	w, err := scanWorkflow(r.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM partnership_workflows
		 WHERE influencer_id = $1 AND status = $2`,
		influencerID, domain.WorkflowActive))
	if err == sql.ErrNoRows {
		return nil, partnership.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active workflow: %w", err)
	}
	return w, nil
}

func (r *WorkflowRepo) ListByInfluencer(ctx context.Context, influencerID string) ([]domain.PartnershipWorkflow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM partnership_workflows
		 WHERE influencer_id = $1 ORDER BY created_at DESC`, influencerID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var out []domain.PartnershipWorkflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// Create inserts the workflow and flips the influencer status in one
// transaction. The partial unique index on (influencer_id) WHERE
// status='active' backs the single-active invariant; a unique violation
// maps to ErrActiveWorkflowExists.
func (r *WorkflowRepo) Create(ctx context.Context, w *domain.PartnershipWorkflow, influencerStatus domain.InfluencerStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create workflow: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM influencers WHERE id = $1)`, w.InfluencerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check influencer: %w", err)
	}
	if !exists {
		return partnership.ErrInfluencerNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO partnership_workflows (id, influencer_id, campaign_id, status, current_step,
		       agreed_price, proposal_notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
	`, w.ID, w.InfluencerID, w.CampaignID, w.Status, w.CurrentStep, w.AgreedPrice, w.ProposalNotes)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return partnership.ErrActiveWorkflowExists
	}
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE influencers SET status = $1, updated_at = NOW() WHERE id = $2`,
		influencerStatus, w.InfluencerID); err != nil {
		return fmt.Errorf("update influencer status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create workflow: %w", err)
	}
	return nil
}

// Apply executes a transition atomically: workflow updates, influencer
// status change and notification outbox insert commit or roll back together.
func (r *WorkflowRepo) Apply(ctx context.Context, workflowID string, t partnership.Transition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	set := []string{"updated_at = NOW()"}
	args := []interface{}{}
	idx := 1
	add := func(expr string, val interface{}) {
		set = append(set, fmt.Sprintf(expr, idx))
		args = append(args, val)
		idx++
	}

	if t.SetStep != nil {
		add("current_step = $%d", *t.SetStep)
	}
	if t.StampStep != nil {
		if *t.StampStep < domain.WorkflowFirstStep || *t.StampStep > domain.WorkflowLastStep {
			return partnership.ErrInvalidStep
		}
		set = append(set, fmt.Sprintf("step%d_completed_at = $%d", *t.StampStep, idx))
		args = append(args, t.StampTime)
		idx++
	}
	if t.SetAgreedPrice != nil {
		add("agreed_price = $%d", *t.SetAgreedPrice)
	}
	if t.SetWorkflowStatus != nil {
		add("status = $%d", *t.SetWorkflowStatus)
	}
	if t.SetCancelledAt {
		add("cancelled_at = $%d", t.StampTime)
	}
	for _, col := range sortedFieldKeys(t.SetFields) {
		add(col+" = $%d", t.SetFields[col])
	}

	args = append(args, workflowID)
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE partnership_workflows SET %s WHERE id = $%d`,
			strings.Join(set, ", "), idx),
		args...)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return partnership.ErrNotFound
	}

	if t.SetInfluencerStatus != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE influencers SET status = $1, updated_at = NOW() WHERE id = $2`,
			*t.SetInfluencerStatus, t.InfluencerID); err != nil {
			return fmt.Errorf("update influencer status: %w", err)
		}
	}

	if n := t.Notification; n != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_notifications (id, workflow_id, influencer_id, kind,
			       recipient, subject, body, status, attempts, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,NOW())
		`, n.ID, n.WorkflowID, n.InfluencerID, n.Kind,
			n.Recipient, n.Subject, n.Body, domain.NotificationPending); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (r *WorkflowRepo) GetInfluencer(ctx context.Context, id string) (*domain.Influencer, error) {
	inf, err := scanInfluencer(r.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, partnership.ErrInfluencerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get influencer: %w", err)
	}
	return inf, nil
}

func (r *WorkflowRepo) GetInfluencerByPortalToken(ctx context.Context, token string) (*domain.Influencer, error) {
	inf, err := scanInfluencer(r.db.QueryRowContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers WHERE portal_token = $1`, token))
	if err == sql.ErrNoRows {
		return nil, partnership.ErrInvalidPortalToken
	}
	if err != nil {
		return nil, fmt.Errorf("get influencer by portal token: %w", err)
	}
	return inf, nil
}

func sortedFieldKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// Deterministic statement text keeps plans cacheable and tests stable.
	sort.Strings(keys)
	return keys
}
