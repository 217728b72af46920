package coupon_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/service/coupon"
)

type memRepo struct {
	mu      sync.Mutex
	coupons map[string]*domain.Coupon
	cleared []string
}

func newMemRepo() *memRepo {
	return &memRepo{coupons: make(map[string]*domain.Coupon)}
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, coupon.ErrNotFound
}

func (m *memRepo) List(_ context.Context, influencerID string) ([]domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Coupon
	for _, c := range m.coupons {
		if influencerID != "" && c.InfluencerID != influencerID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.coupons {
		if existing.Code == c.Code {
			return coupon.ErrDuplicateCode
		}
	}
	cp := *c
	m.coupons[cp.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[id]; !ok {
		return coupon.ErrNotFound
	}
	delete(m.coupons, id)
	return nil
}

func (m *memRepo) ClearWorkflowReference(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, code)
	return nil
}

// fakeStorefront records discount calls and simulates remote state.
type fakeStorefront struct {
	mu      sync.Mutex
	next    int
	rules   map[string]bool
	failAll bool
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{rules: make(map[string]bool)}
}

func (f *fakeStorefront) CreateDiscount(_ context.Context, code string, _ float64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return "", "", errors.New("storefront down")
	}
	f.next++
	ruleID := fmt.Sprintf("rule-%d", f.next)
	f.rules[ruleID] = true
	return ruleID, fmt.Sprintf("disc-%d", f.next), nil
}

func (f *fakeStorefront) DeleteDiscount(_ context.Context, priceRuleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errors.New("storefront down")
	}
	if !f.rules[priceRuleID] {
		return false, nil
	}
	delete(f.rules, priceRuleID)
	return true, nil
}

func TestCreateIssuesRemoteDiscount(t *testing.T) {
	repo := newMemRepo()
	sf := newFakeStorefront()
	svc := coupon.NewService(repo, sf)

	c, err := svc.Create(context.Background(), coupon.CreateInput{
		InfluencerID: "inf-1", Code: "maria15", PercentOff: 15,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Code != "MARIA15" {
		t.Fatalf("expected uppercased code, got %s", c.Code)
	}
	if c.RemotePriceRuleID == "" || c.RemoteDiscountID == "" {
		t.Fatal("expected remote ids to be recorded")
	}
	if !sf.rules[c.RemotePriceRuleID] {
		t.Fatal("expected price rule to exist on storefront")
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := coupon.NewService(newMemRepo(), newFakeStorefront())
	if _, err := svc.Create(context.Background(), coupon.CreateInput{InfluencerID: "inf-1", Code: "DUP10", PercentOff: 10}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), coupon.CreateInput{InfluencerID: "inf-2", Code: "dup10", PercentOff: 10})
	if !errors.Is(err, coupon.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestDeleteRemovesRemoteThenLocal(t *testing.T) {
	repo := newMemRepo()
	sf := newFakeStorefront()
	svc := coupon.NewService(repo, sf)

	c, err := svc.Create(context.Background(), coupon.CreateInput{InfluencerID: "inf-1", Code: "GONE20", PercentOff: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteByCode(context.Background(), "GONE20"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sf.rules[c.RemotePriceRuleID] {
		t.Fatal("expected price rule removed from storefront")
	}
	if _, err := repo.GetByCode(context.Background(), "GONE20"); !errors.Is(err, coupon.ErrNotFound) {
		t.Fatal("expected local coupon removed")
	}
	if len(repo.cleared) != 1 || repo.cleared[0] != "GONE20" {
		t.Fatalf("expected workflow reference cleared for GONE20, got %v", repo.cleared)
	}
}

func TestDeleteSucceedsWhenRemoteAlreadyGone(t *testing.T) {
	repo := newMemRepo()
	sf := newFakeStorefront()
	svc := coupon.NewService(repo, sf)

	c, err := svc.Create(context.Background(), coupon.CreateInput{InfluencerID: "inf-1", Code: "STALE5", PercentOff: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Someone deleted the discount in the Shopify admin directly.
	sf.mu.Lock()
	delete(sf.rules, c.RemotePriceRuleID)
	sf.mu.Unlock()

	if err := svc.DeleteByCode(context.Background(), "STALE5"); err != nil {
		t.Fatalf("delete of a coupon absent upstream must still succeed: %v", err)
	}
	if _, err := repo.GetByCode(context.Background(), "STALE5"); !errors.Is(err, coupon.ErrNotFound) {
		t.Fatal("expected local coupon removed despite missing remote")
	}
}

func TestDeletePropagatesStorefrontFailure(t *testing.T) {
	repo := newMemRepo()
	sf := newFakeStorefront()
	svc := coupon.NewService(repo, sf)

	if _, err := svc.Create(context.Background(), coupon.CreateInput{InfluencerID: "inf-1", Code: "KEEP1", PercentOff: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	sf.failAll = true

	if err := svc.DeleteByCode(context.Background(), "KEEP1"); err == nil {
		t.Fatal("expected error when the storefront call fails")
	}
	// The local row must survive a failed remote delete.
	if _, err := repo.GetByCode(context.Background(), "KEEP1"); err != nil {
		t.Fatal("local coupon must remain when remote delete fails")
	}
}
