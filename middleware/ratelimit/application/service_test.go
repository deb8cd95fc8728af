package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-tools-gateway/middleware/ratelimit/domain"
)

type fakeStore struct {
	st   domain.WindowState
	err  error
	hits int
}

func (s *fakeStore) Hit(context.Context, domain.Key, domain.Quota) (domain.WindowState, error) {
	s.hits++
	return s.st, s.err
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestQuotaService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := QuotaService{Quota: domain.Quota{MaxRequests: 1, Window: time.Hour}}
	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
}

func TestQuotaService_Decide_RemainingFromCount(t *testing.T) {
	store := &fakeStore{st: domain.WindowState{Allowed: true, Count: 3, ResetAt: fixedNow.Add(30 * time.Minute)}}
	svc := QuotaService{Store: store, Quota: domain.Quota{Name: "debate", MaxRequests: 10, Window: time.Hour}, Now: clock}

	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed || dec.Remaining != 7 {
		t.Fatalf("expected allowed with remaining=7, got %+v", dec)
	}
}

func TestQuotaService_Decide_DeniedRoundsResetUp(t *testing.T) {
	store := &fakeStore{st: domain.WindowState{Allowed: false, Count: 10, ResetAt: fixedNow.Add(90*time.Second + time.Millisecond)}}
	svc := QuotaService{Store: store, Quota: domain.Quota{MaxRequests: 10, Window: time.Hour}, Now: clock}

	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.ResetInMinutes != 2 {
		t.Fatalf("expected ResetInMinutes=2, got %d", dec.ResetInMinutes)
	}
}

func TestQuotaService_Decide_WrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := QuotaService{Store: &fakeStore{err: boom}, Quota: domain.Quota{Name: "q", MaxRequests: 1, Window: time.Minute}}

	_, err := svc.Decide(context.Background(), "k")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestCeilMinutes(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{time.Millisecond, 1},
		{time.Minute, 1},
		{time.Minute + time.Millisecond, 2},
		{59*time.Minute + 30*time.Second, 60},
	}
	for _, c := range cases {
		if got := CeilMinutes(c.in); got != c.want {
			t.Fatalf("CeilMinutes(%s) = %d, want %d", c.in, got, c.want)
		}
	}
}
