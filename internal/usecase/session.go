package usecase

import (
	"context"
	"fmt"

	"github.com/vitos/bybit_dca_bot/internal/domain"
	"go.uber.org/zap"
)

// Session owns the strategy config and trigger flags for one run of the
// bot and drives ladder reconciliation for both sides each cycle.
type Session struct {
	exchange domain.Exchange
	store    domain.DocumentStore
	logger   *zap.Logger
	symbol   string
	ladder   *LadderService

	cfg     *domain.StrategyConfig
	trigger *domain.TriggerState
}

func NewSession(exchange domain.Exchange, store domain.DocumentStore, logger *zap.Logger, symbol string) *Session {
	return &Session{
		exchange: exchange,
		store:    store,
		logger:   logger,
		symbol:   symbol,
		ladder:   NewLadderService(exchange, store, logger, symbol),
	}
}

// Start loads the strategy documents and verifies exchange
// connectivity. The session is unusable if this fails.
func (s *Session) Start(ctx context.Context, cancelAllOnStart bool) error {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfigUnavailable, err)
	}
	trigger, err := s.store.GetTriggerState(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfigUnavailable, err)
	}
	s.cfg = cfg
	s.trigger = trigger

	if _, err := s.exchange.GetTicker(ctx, s.symbol); err != nil {
		return fmt.Errorf("exchange connectivity check: %w", err)
	}

	if cancelAllOnStart {
		if err := s.exchange.CancelAllOrders(ctx, s.symbol); err != nil {
			return fmt.Errorf("cancel all orders on start: %w", err)
		}
		s.logger.Info("cancelled all resting orders on start", zap.String("symbol", s.symbol))
	}

	s.logger.Info("session started",
		zap.String("symbol", s.symbol),
		zap.Bool("long_enabled", trigger.LongEnabled),
		zap.Bool("short_enabled", trigger.ShortEnabled),
		zap.Float64("min_qty", cfg.MinQty),
		zap.Float64("max_hold_positions", cfg.MaxHoldPositions))
	return nil
}

// RunCycle fetches one snapshot of positions and active orders, then
// reconciles long and short against it. A failed side is logged and
// left for the next cycle's fresh snapshot to repair; it never takes
// the process down.
func (s *Session) RunCycle(ctx context.Context) error {
	if s.cfg == nil || s.trigger == nil {
		return domain.ErrConfigUnavailable
	}

	positions, err := s.exchange.GetPositions(ctx, s.symbol)
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}
	orders, err := s.exchange.GetActiveOrders(ctx, s.symbol)
	if err != nil {
		return fmt.Errorf("get active orders: %w", err)
	}

	snap := &CycleSnapshot{Positions: positions, ActiveOrders: orders}

	if err := s.ladder.RunLong(ctx, s.cfg, s.trigger.LongEnabled, snap); err != nil {
		s.logger.Error("long side pass failed", zap.String("symbol", s.symbol), zap.Error(err))
	}
	if err := s.ladder.RunShort(ctx, s.cfg, s.trigger.ShortEnabled, snap); err != nil {
		s.logger.Error("short side pass failed", zap.String("symbol", s.symbol), zap.Error(err))
	}
	return nil
}
