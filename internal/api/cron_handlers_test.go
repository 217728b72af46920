package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeJob struct {
	processed int
	err       error
	runs      int
}

func (j *fakeJob) RunOnce(ctx context.Context) (int, error) {
	j.runs++
	return j.processed, j.err
}

type fakeLocker struct {
	held     bool
	released bool
}

func (l *fakeLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	return func() { l.released = true }, true, nil
}

func TestCronJobRunsUnderLock(t *testing.T) {
	h := &Handlers{}
	job := &fakeJob{processed: 3}
	lock := &fakeLocker{}
	h.SetLocker(lock)
	h.SetCronJobs(job, nil, nil)

	rec := httptest.NewRecorder()
	h.HandleCronDrainImports(rec, httptest.NewRequest("POST", "/cron/drain-imports", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["processed"].(float64) != 3 {
		t.Errorf("processed = %v, want 3", body["processed"])
	}
	if job.runs != 1 {
		t.Errorf("job ran %d times, want 1", job.runs)
	}
	if !lock.released {
		t.Error("lock was not released")
	}
}

func TestCronJobSkipsWhenLockHeld(t *testing.T) {
	h := &Handlers{}
	job := &fakeJob{}
	h.SetLocker(&fakeLocker{held: true})
	h.SetCronJobs(job, nil, nil)

	rec := httptest.NewRecorder()
	h.HandleCronDrainImports(rec, httptest.NewRequest("POST", "/cron/drain-imports", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["skipped"] != true {
		t.Errorf("skipped = %v, want true", body["skipped"])
	}
	if job.runs != 0 {
		t.Errorf("job ran %d times, want 0", job.runs)
	}
}

func TestCronJobUnconfigured(t *testing.T) {
	h := &Handlers{}

	rec := httptest.NewRecorder()
	h.HandleCronSyncMail(rec, httptest.NewRequest("POST", "/cron/sync-mail", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
