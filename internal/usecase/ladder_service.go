package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitos/bybit_dca_bot/internal/domain"
	"go.uber.org/zap"
)

const (
	priceDecimals = 2

	defaultFillPollInterval = 500 * time.Millisecond
	defaultFillPollTimeout  = 10 * time.Second
)

// CycleSnapshot is the per-cycle view of the exchange. Both sides
// reason about the same snapshot so a cycle stays internally consistent.
type CycleSnapshot struct {
	Positions    *domain.PositionPair
	ActiveOrders []*domain.Order
}

// PartitionOrders splits active orders into long-side and short-side
// buckets by trade type. Every order lands in exactly one bucket.
func PartitionOrders(orders []*domain.Order) (long, short []*domain.Order) {
	for _, o := range orders {
		if o.TradeType().IsLong() {
			long = append(long, o)
		} else {
			short = append(short, o)
		}
	}
	return long, short
}

// LadderService reconciles one side's resting order ladder (DCA entry +
// take-profit close) with the position currently held on the exchange.
type LadderService struct {
	exchange domain.Exchange
	store    domain.DocumentStore
	logger   *zap.Logger
	symbol   string

	fillPollInterval time.Duration
	fillPollTimeout  time.Duration

	// Sticky per-side flags so the capacity warning fires once, not
	// every cycle the position sits at max hold.
	longSizeExceeded  bool
	shortSizeExceeded bool
}

func NewLadderService(exchange domain.Exchange, store domain.DocumentStore, logger *zap.Logger, symbol string) *LadderService {
	return &LadderService{
		exchange:         exchange,
		store:            store,
		logger:           logger,
		symbol:           symbol,
		fillPollInterval: defaultFillPollInterval,
		fillPollTimeout:  defaultFillPollTimeout,
	}
}

// sideParams carries the side-dependent constants of a reconciliation
// pass. Percentages are pre-signed: long entries move price down and
// long closes up, shorts mirror both.
type sideParams struct {
	label     string
	entrySide domain.Side
	openRole  domain.TradeType
	closeRole domain.TradeType
	entryPct  float64
	profitPct float64
	exceeded  *bool
}

// RunLong reconciles the long side against the snapshot.
func (s *LadderService) RunLong(ctx context.Context, cfg *domain.StrategyConfig, enabled bool, snap *CycleSnapshot) error {
	longOrders, _ := PartitionOrders(snap.ActiveOrders)
	p := sideParams{
		label:     "long",
		entrySide: domain.SideBuy,
		openRole:  domain.TradeOpenLong,
		closeRole: domain.TradeCloseLong,
		entryPct:  -cfg.LongNextEntry,
		profitPct: cfg.LongProfit,
		exceeded:  &s.longSizeExceeded,
	}
	return s.runSide(ctx, p, cfg, enabled, snap.Positions.Long, longOrders)
}

// RunShort reconciles the short side against the snapshot.
func (s *LadderService) RunShort(ctx context.Context, cfg *domain.StrategyConfig, enabled bool, snap *CycleSnapshot) error {
	_, shortOrders := PartitionOrders(snap.ActiveOrders)
	p := sideParams{
		label:     "short",
		entrySide: domain.SideSell,
		openRole:  domain.TradeOpenShort,
		closeRole: domain.TradeCloseShort,
		entryPct:  cfg.ShortNextEntry,
		profitPct: -cfg.ShortProfit,
		exceeded:  &s.shortSizeExceeded,
	}
	return s.runSide(ctx, p, cfg, enabled, snap.Positions.Short, shortOrders)
}

func (s *LadderService) runSide(ctx context.Context, p sideParams, cfg *domain.StrategyConfig, enabled bool, pos *domain.Position, orders []*domain.Order) error {
	if !enabled {
		return nil
	}

	if pos.Size >= cfg.MaxHoldPositions {
		if !*p.exceeded {
			s.logger.Warn("max hold positions reached, ladder growth halted",
				zap.String("side", p.label),
				zap.Float64("size", pos.Size),
				zap.Float64("max_hold_positions", cfg.MaxHoldPositions))
			*p.exceeded = true
		}
		return nil
	}
	*p.exceeded = false

	if pos.Size == 0 {
		return s.openPosition(ctx, p, cfg, orders)
	}
	return s.maintainLadder(ctx, p, cfg, pos, orders)
}

// maintainLadder repairs a partial ladder. The repair is deliberately
// coarse: if either role is missing, every resting order on the side is
// cancelled and the full bracket reissued.
func (s *LadderService) maintainLadder(ctx context.Context, p sideParams, cfg *domain.StrategyConfig, pos *domain.Position, orders []*domain.Order) error {
	var hasOpen, hasClose bool
	for _, o := range orders {
		switch o.TradeType() {
		case p.openRole:
			hasOpen = true
		case p.closeRole:
			hasClose = true
		}
	}
	if hasOpen && hasClose {
		return nil
	}

	if err := s.cancelSideOrders(ctx, p, orders); err != nil {
		return err
	}

	exponent := SpacingExponent(cfg.MinQty, pos.Size)
	entryPrice := PercentChange(pos.EntryPrice, p.entryPct*float64(exponent), priceDecimals)
	closePrice := PercentChange(pos.EntryPrice, p.profitPct, priceDecimals)

	record, err := s.placeBracket(ctx, p, pos.Size, entryPrice, closePrice, nil)
	if err != nil {
		return err
	}

	s.logger.Info("ladder rebuilt",
		zap.String("side", p.label),
		zap.Float64("size", pos.Size),
		zap.Int("spacing_exponent", exponent),
		zap.Float64("entry_price", entryPrice),
		zap.Float64("close_price", closePrice))

	return s.persistRecord(ctx, p, record)
}

// openPosition is the cold-start path: sweep stray orders, open the
// minimum position with a market order, wait for the fill and bracket
// it from the fill price.
func (s *LadderService) openPosition(ctx context.Context, p sideParams, cfg *domain.StrategyConfig, orders []*domain.Order) error {
	if err := s.cancelSideOrders(ctx, p, orders); err != nil {
		return err
	}

	placed, err := s.exchange.PlaceMarketOrder(ctx, s.symbol, cfg.MinQty, p.entrySide)
	if err != nil {
		return fmt.Errorf("place market order: %w", err)
	}

	filled, err := s.waitForFill(ctx, placed.ID)
	if err != nil {
		return err
	}

	entryPrice := PercentChange(filled.AvgPrice, p.entryPct, priceDecimals)
	closePrice := PercentChange(filled.AvgPrice, p.profitPct, priceDecimals)

	record, err := s.placeBracket(ctx, p, filled.CumExecQty, entryPrice, closePrice, filled)
	if err != nil {
		return err
	}

	s.logger.Info("position opened",
		zap.String("side", p.label),
		zap.String("order_id", filled.ID),
		zap.Float64("fill_price", filled.AvgPrice),
		zap.Float64("qty", filled.CumExecQty),
		zap.Float64("entry_price", entryPrice),
		zap.Float64("close_price", closePrice))

	return s.persistRecord(ctx, p, record)
}

// placeBracket issues the DCA entry order and the reduce-only close
// order. A rejected close leaves the entry resting; the next cycle's
// repair pass picks the imbalance up.
func (s *LadderService) placeBracket(ctx context.Context, p sideParams, qty, entryPrice, closePrice float64, filled *domain.Order) (*domain.EntryRecord, error) {
	entry, err := s.exchange.PlaceLimitOrder(ctx, s.symbol, qty, entryPrice, p.entrySide, false)
	if err != nil {
		return nil, fmt.Errorf("place entry order: %w", err)
	}

	closeOrder, err := s.exchange.PlaceLimitOrder(ctx, s.symbol, qty, closePrice, p.entrySide.Opposite(), true)
	if err != nil {
		return nil, fmt.Errorf("place close order: %w", err)
	}

	return &domain.EntryRecord{
		Side:        p.entrySide,
		FilledOrder: filled,
		EntryOrder:  entry,
		CloseOrder:  closeOrder,
		Timestamp:   time.Now(),
	}, nil
}

func (s *LadderService) cancelSideOrders(ctx context.Context, p sideParams, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	if err := s.exchange.CancelOrders(ctx, s.symbol, ids); err != nil {
		return fmt.Errorf("cancel %s orders: %w", p.label, err)
	}
	return nil
}

func (s *LadderService) waitForFill(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := Await(ctx, s.fillPollInterval, s.fillPollTimeout, func(ctx context.Context) (*domain.Order, bool, error) {
		o, err := s.exchange.GetOrder(ctx, s.symbol, orderID)
		if err != nil {
			return nil, false, err
		}
		return o, o.Status == domain.OrderStatusFilled, nil
	})
	if err != nil {
		if errors.Is(err, ErrAwaitTimeout) {
			return nil, fmt.Errorf("%w: order %s", domain.ErrFillTimeout, orderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *LadderService) persistRecord(ctx context.Context, p sideParams, record *domain.EntryRecord) error {
	if err := s.store.AppendEntryRecord(ctx, record); err != nil {
		s.logger.Error("failed to persist entry record",
			zap.String("side", p.label),
			zap.Error(err))
		return fmt.Errorf("append entry record: %w", err)
	}
	return nil
}
