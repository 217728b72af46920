package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

type fakeOutbox struct {
	pending  []domain.Notification
	sent     []string
	failures []recordedFailure
	listErr  error
}

type recordedFailure struct {
	id    string
	msg   string
	final bool
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]domain.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) RecordFailure(ctx context.Context, id, errMsg string, final bool) error {
	f.failures = append(f.failures, recordedFailure{id: id, msg: errMsg, final: final})
	return nil
}

type fakeSender struct {
	err  error
	sent []string
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body, threadID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.sent = append(f.sent, to)
	return "gmail-1", "thread-1", nil
}

func TestNotificationDispatcherSendsAndMarks(t *testing.T) {
	outbox := &fakeOutbox{pending: []domain.Notification{
		{ID: "n1", Recipient: "ana@example.com", Subject: "Proposta aceita"},
		{ID: "n2", Recipient: "bia@example.com", Subject: "Contraproposta enviada"},
	}}
	sender := &fakeSender{}

	d := NewNotificationDispatcher(outbox, sender)
	sent, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if len(outbox.sent) != 2 || outbox.sent[0] != "n1" || outbox.sent[1] != "n2" {
		t.Errorf("marked sent = %v, want [n1 n2]", outbox.sent)
	}
	if len(outbox.failures) != 0 {
		t.Errorf("unexpected failures recorded: %v", outbox.failures)
	}
}

func TestNotificationDispatcherRecordsFailureAndContinues(t *testing.T) {
	outbox := &fakeOutbox{pending: []domain.Notification{
		{ID: "n1", Recipient: "ana@example.com", Attempts: 0},
	}}
	sender := &fakeSender{err: errors.New("smtp timeout")}

	d := NewNotificationDispatcher(outbox, sender)
	sent, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
	if len(outbox.failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(outbox.failures))
	}
	if outbox.failures[0].final {
		t.Error("first failure should not be final")
	}
	if outbox.failures[0].msg != "smtp timeout" {
		t.Errorf("failure msg = %q", outbox.failures[0].msg)
	}
}

func TestNotificationDispatcherFinalAttemptParksRow(t *testing.T) {
	outbox := &fakeOutbox{pending: []domain.Notification{
		{ID: "n1", Recipient: "ana@example.com", Attempts: 4},
	}}
	sender := &fakeSender{err: errors.New("mailbox gone")}

	d := NewNotificationDispatcher(outbox, sender)
	if _, err := d.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(outbox.failures) != 1 || !outbox.failures[0].final {
		t.Errorf("fifth failure should be final, got %+v", outbox.failures)
	}
}

func TestNotificationDispatcherPropagatesListError(t *testing.T) {
	outbox := &fakeOutbox{listErr: errors.New("db down")}
	d := NewNotificationDispatcher(outbox, &fakeSender{})

	if _, err := d.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() should surface outbox list errors")
	}
}
