package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/influencer"
)

var influencerTestColumns = []string{
	"id", "name", "email", "handle", "platform", "status", "portal_token",
	"followers", "engagement_rate", "avg_views", "commission_rate",
	"notes", "source", "created_at", "updated_at",
}

func influencerRow(id, handle string, status domain.InfluencerStatus, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "Ana Souza", "ana@example.com", handle, "instagram", string(status), "tok-" + id,
		int64(120000), 4.2, int64(35000), 10.0,
		"", "manual", createdAt, createdAt,
	}
}

func TestInfluencerRepo_GetNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewInfluencerRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM influencers WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(influencerTestColumns))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, influencer.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestInfluencerRepo_CreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewInfluencerRepo(db)

	mock.ExpectExec("INSERT INTO influencers").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Influencer{
		ID:       "inf-1",
		Handle:   "anasouza",
		Platform: domain.PlatformInstagram,
	})
	if !errors.Is(err, influencer.ErrDuplicateHandle) {
		t.Errorf("Create() error = %v, want ErrDuplicateHandle", err)
	}
}

func TestInfluencerRepo_ListPendingImportOldestFirst(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewInfluencerRepo(db)

	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)
	rows := sqlmock.NewRows(influencerTestColumns).
		AddRow(influencerRow("inf-1", "first", domain.InfluencerImportPending, older)...).
		AddRow(influencerRow("inf-2", "second", domain.InfluencerImportPending, newer)...)

	mock.ExpectQuery("FROM influencers\\s+WHERE status = (.+) ORDER BY created_at ASC").
		WithArgs(domain.InfluencerImportPending, 10).
		WillReturnRows(rows)

	got, err := repo.ListPendingImport(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingImport() error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "inf-1" {
		t.Errorf("ListPendingImport() = %+v, want oldest row first", got)
	}
}

func TestInfluencerRepo_UpdateMissingRow(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewInfluencerRepo(db)

	mock.ExpectExec("UPDATE influencers SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "Renamed"
	err := repo.Update(context.Background(), "missing", influencer.UpdateFields{Name: &name})
	if !errors.Is(err, influencer.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}
