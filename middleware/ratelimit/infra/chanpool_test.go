package infra

import (
	"context"
	"testing"
)

func TestChanPool_CapacityAndRelease(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire ok")
	}
	if p.InUse() != 1 {
		t.Fatalf("expected 1 in use, got %d", p.InUse())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected acquire to fail when full and ctx done")
	}

	release()
	release() // idempotente
	if p.InUse() != 0 {
		t.Fatalf("expected 0 in use, got %d", p.InUse())
	}

	// com vaga livre, ctx encerrado não impede a aquisição
	if _, ok := p.Acquire(ctx); !ok {
		t.Fatalf("expected acquire to succeed with free slot")
	}
}
