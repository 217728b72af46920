package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/partnership"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { db.Close() }
}

func TestWorkflowRepo_CreateCommitsWorkflowAndStatus(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("inf-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO partnership_workflows").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE influencers SET status").
		WithArgs(domain.InfluencerNegotiating, "inf-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := &domain.PartnershipWorkflow{
		ID:           "wf-1",
		InfluencerID: "inf-1",
		Status:       domain.WorkflowActive,
		CurrentStep:  1,
	}
	if err := repo.Create(context.Background(), w, domain.InfluencerNegotiating); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWorkflowRepo_CreateRejectsUnknownInfluencer(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	w := &domain.PartnershipWorkflow{ID: "wf-1", InfluencerID: "ghost"}
	err := repo.Create(context.Background(), w, domain.InfluencerNegotiating)
	if !errors.Is(err, partnership.ErrInfluencerNotFound) {
		t.Errorf("Create() error = %v, want ErrInfluencerNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWorkflowRepo_CreateMapsUniqueViolationToActiveConflict(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("inf-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO partnership_workflows").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	w := &domain.PartnershipWorkflow{ID: "wf-2", InfluencerID: "inf-1"}
	err := repo.Create(context.Background(), w, domain.InfluencerNegotiating)
	if !errors.Is(err, partnership.ErrActiveWorkflowExists) {
		t.Errorf("Create() error = %v, want ErrActiveWorkflowExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWorkflowRepo_ApplyRunsFullTransactionalTransition(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE partnership_workflows SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE influencers SET status").
		WithArgs(domain.InfluencerAgreed, "inf-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO workflow_notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	step := 3
	status := domain.InfluencerAgreed
	tr := partnership.Transition{
		SetStep:             &step,
		StampStep:           intPtr(2),
		StampTime:           time.Now(),
		InfluencerID:        "inf-1",
		SetInfluencerStatus: &status,
		Notification: &domain.Notification{
			ID:           "ntf-1",
			WorkflowID:   "wf-1",
			InfluencerID: "inf-1",
			Kind:         domain.NotifyProposalAccepted,
			Recipient:    "ana@example.com",
			Subject:      "Proposta aceita",
			Body:         "<p>Bem-vinda!</p>",
		},
	}
	if err := repo.Apply(context.Background(), "wf-1", tr); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWorkflowRepo_ApplyRejectsOutOfRangeStepStamp(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tr := partnership.Transition{StampStep: intPtr(6), StampTime: time.Now()}
	err := repo.Apply(context.Background(), "wf-1", tr)
	if !errors.Is(err, partnership.ErrInvalidStep) {
		t.Errorf("Apply() error = %v, want ErrInvalidStep", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWorkflowRepo_ApplyMissingWorkflow(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewWorkflowRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE partnership_workflows SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	step := 2
	err := repo.Apply(context.Background(), "missing", partnership.Transition{SetStep: &step})
	if !errors.Is(err, partnership.ErrNotFound) {
		t.Errorf("Apply() error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func intPtr(v int) *int { return &v }
