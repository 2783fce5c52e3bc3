package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/vitos/bybit_dca_bot/internal/domain"
	"go.uber.org/zap"
)

func TestSessionStart_NoConfig(t *testing.T) {
	ex := newMockExchange()
	store := &mockStore{cfgErr: domain.ErrNoDocument}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")

	err := session.Start(context.Background(), false)
	if !errors.Is(err, domain.ErrConfigUnavailable) {
		t.Fatalf("expected ErrConfigUnavailable, got %v", err)
	}
}

func TestSessionStart_NoTriggerState(t *testing.T) {
	ex := newMockExchange()
	store := &mockStore{cfg: testConfig(), triggerErr: domain.ErrNoDocument}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")

	err := session.Start(context.Background(), false)
	if !errors.Is(err, domain.ErrConfigUnavailable) {
		t.Fatalf("expected ErrConfigUnavailable, got %v", err)
	}
}

func TestSessionStart_CancelAllOnStart(t *testing.T) {
	ex := newMockExchange()
	store := &mockStore{
		cfg:     testConfig(),
		trigger: &domain.TriggerState{LongEnabled: true, ShortEnabled: true},
	}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")

	if err := session.Start(context.Background(), true); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if ex.tickerCalls != 1 {
		t.Errorf("expected a connectivity check, got %d ticker calls", ex.tickerCalls)
	}
	if ex.cancelAllCalls != 1 {
		t.Errorf("expected one cancel-all on start, got %d", ex.cancelAllCalls)
	}
}

func TestSessionRunCycle_BeforeStart(t *testing.T) {
	ex := newMockExchange()
	session := NewSession(ex, &mockStore{}, zap.NewNop(), "BTCUSDT")

	err := session.RunCycle(context.Background())
	if !errors.Is(err, domain.ErrConfigUnavailable) {
		t.Fatalf("expected ErrConfigUnavailable, got %v", err)
	}
}

func TestSessionRunCycle_SingleSnapshot(t *testing.T) {
	ex := newMockExchange()
	store := &mockStore{
		cfg:     testConfig(),
		trigger: &domain.TriggerState{LongEnabled: true, ShortEnabled: true},
	}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")
	session.ladder.fillPollInterval = 1
	session.ladder.fillPollTimeout = 1

	ctx := context.Background()
	if err := session.Start(ctx, false); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if ex.positionsCalls != 1 {
		t.Errorf("both sides must share one position snapshot, got %d fetches", ex.positionsCalls)
	}
	if ex.ordersCalls != 1 {
		t.Errorf("both sides must share one order snapshot, got %d fetches", ex.ordersCalls)
	}

	// Both sides were flat, so both cold-start.
	if len(ex.marketOrders) != 2 {
		t.Fatalf("expected both sides to open, got %d market orders", len(ex.marketOrders))
	}
	if ex.marketOrders[0].Side != domain.SideBuy || ex.marketOrders[1].Side != domain.SideSell {
		t.Errorf("expected long then short, got %s then %s", ex.marketOrders[0].Side, ex.marketOrders[1].Side)
	}
}

func TestSessionRunCycle_SideFailureDoesNotAbortCycle(t *testing.T) {
	ex := newMockExchange()
	ex.marketFailSide = domain.SideBuy
	store := &mockStore{
		cfg:     testConfig(),
		trigger: &domain.TriggerState{LongEnabled: true, ShortEnabled: true},
	}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")
	session.ladder.fillPollInterval = 1
	session.ladder.fillPollTimeout = 1

	ctx := context.Background()
	if err := session.Start(ctx, false); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.RunCycle(ctx); err != nil {
		t.Fatalf("a side failure must not fail the cycle: %v", err)
	}

	// Long's market order was rejected; short still ran.
	if len(ex.marketOrders) != 1 || ex.marketOrders[0].Side != domain.SideSell {
		t.Fatalf("expected the short side to proceed, got %+v", ex.marketOrders)
	}
}

func TestSessionRunCycle_DisabledSides(t *testing.T) {
	ex := newMockExchange()
	store := &mockStore{
		cfg:     testConfig(),
		trigger: &domain.TriggerState{LongEnabled: false, ShortEnabled: false},
	}
	session := NewSession(ex, store, zap.NewNop(), "BTCUSDT")

	ctx := context.Background()
	if err := session.Start(ctx, false); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := session.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if len(ex.marketOrders)+len(ex.limitOrders)+len(ex.cancelledIDs) != 0 {
		t.Errorf("disabled sides must not touch the exchange")
	}
}
