// Package workflow sequences the post-login steps of the trade
// session and drives the market-data session off the resulting
// instrument catalog: authenticate, login, settlement query and
// confirmation, instrument discovery, subscription.
package workflow

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tabxx/ctpbridge/internal/codec"
)

// TradeCommands is the slice of the trade session the workflow drives.
type TradeCommands interface {
	Set(brokerID, investorID string) error
	Auth(userID, appID, authCode string) error
	Login(userID, password string) error
	Logout(userID string) error
	QuerySettlementInfo(tradingDay string) error
	ConfirmSettlementInfo() error
	QueryInstrument() error
}

// MarketDataCommands is the slice of the market-data session the
// workflow drives.
type MarketDataCommands interface {
	Subscribe(instruments []string) error
	Unsubscribe(instruments []string) error
}

// Identity is the immutable credential set shared by both sessions.
type Identity struct {
	BrokerID   string
	UserID     string
	InvestorID string
	Password   string
	AppID      string
	AuthCode   string
}

// Config for the trade workflow.
type Config struct {
	Identity  Identity
	RecordDir string
	// SubscribeRate throttles the per-instrument subscribe fan-out;
	// the gateway rejects request bursts.
	SubscribeRate  float64
	SubscribeBurst int
}

// Trading is the session-scoped workflow state: the settlement page
// counter, the instrument registry and the latched trading day all
// live here, reset on every session loss. It implements
// session.TradeHandler.
type Trading struct {
	cfg     Config
	log     *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time

	trade TradeCommands
	md    MarketDataCommands

	mu              sync.Mutex
	tradingDay      string
	settlementLines int
	pending         []string // registry built during instrument pagination
	subscribed      []string // instruments live on the market-data feed
	fanoutCancel    context.CancelFunc
}

func NewTrading(cfg Config, log *zap.Logger) *Trading {
	if cfg.SubscribeRate <= 0 {
		cfg.SubscribeRate = 50
	}
	if cfg.SubscribeBurst <= 0 {
		cfg.SubscribeBurst = 10
	}
	return &Trading{
		cfg:     cfg,
		log:     log.Named("workflow"),
		limiter: rate.NewLimiter(rate.Limit(cfg.SubscribeRate), cfg.SubscribeBurst),
		now:     time.Now,
	}
}

// Bind attaches the two sessions. Must be called before the first
// connect; the sessions need the workflow as handler at construction,
// so wiring happens in two steps.
func (w *Trading) Bind(trade TradeCommands, md MarketDataCommands) {
	w.trade = trade
	w.md = md
}

// TradingDay returns the business date latched at the most recent
// login; empty once the session is torn down or lost. The scheduler
// reads it before Teardown to know which day to archive.
func (w *Trading) TradingDay() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tradingDay
}

// Subscribed returns a copy of the instruments currently live on the
// market-data feed.
func (w *Trading) Subscribed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.subscribed))
	copy(out, w.subscribed)
	return out
}

// Teardown unsubscribes everything still live and clears all
// session-scoped state. The scheduler calls it when a trading window
// closes.
func (w *Trading) Teardown() {
	w.mu.Lock()
	if w.fanoutCancel != nil {
		w.fanoutCancel()
		w.fanoutCancel = nil
	}
	subscribed := w.subscribed
	w.subscribed = nil
	w.pending = nil
	w.settlementLines = 0
	w.tradingDay = ""
	w.mu.Unlock()

	if len(subscribed) > 0 {
		if err := w.md.Unsubscribe(subscribed); err != nil {
			w.log.Error("unsubscribe", zap.Error(err))
		}
	}
	if err := w.trade.Logout(w.cfg.Identity.UserID); err != nil {
		w.log.Error("logout", zap.Error(err))
	}
}

// OnReady fires once the bridge accepts the socket; the session has
// already issued the upstream connect.
func (w *Trading) OnReady() {
	w.log.Info("bridge ready")
}

func (w *Trading) OnFrontConnected() {
	w.log.Info("front connected")
	id := w.cfg.Identity
	if err := w.trade.Set(id.BrokerID, id.InvestorID); err != nil {
		w.log.Error("set identity", zap.Error(err))
		return
	}
	if err := w.trade.Auth(id.UserID, id.AppID, id.AuthCode); err != nil {
		w.log.Error("auth", zap.Error(err))
	}
}

func (w *Trading) OnAuthenticated() {
	w.log.Info("authenticated")
	id := w.cfg.Identity
	if err := w.trade.Login(id.UserID, id.Password); err != nil {
		w.log.Error("login", zap.Error(err))
	}
}

func (w *Trading) OnLoggedIn(info codec.LoginInfo) {
	w.log.Info("logged in",
		zap.String("trading_day", info.TradingDay),
		zap.String("system", info.SystemName))

	if info.TradingDay != "" {
		w.mu.Lock()
		w.tradingDay = info.TradingDay
		w.mu.Unlock()
		w.ensureDir(w.cfg.RecordDir)
		w.ensureDir(filepath.Join(w.cfg.RecordDir, info.TradingDay))
	}

	if err := w.trade.QuerySettlementInfo(settlementDay(w.now())); err != nil {
		w.log.Error("query settlement info", zap.Error(err))
	}
}

// settlementDay is yesterday in the UTC+8 business calendar, formatted
// the way the gateway expects.
func settlementDay(now time.Time) string {
	return now.UTC().Add(8*time.Hour - 24*time.Hour).Format("20060102")
}

func (w *Trading) OnSettlementInfo(page codec.SettlementInfo) {
	w.mu.Lock()
	if !page.IsLast {
		w.settlementLines++
		w.mu.Unlock()
		return
	}
	lines := w.settlementLines + 1
	w.settlementLines = 0
	w.mu.Unlock()

	w.log.Info("settlement info received", zap.Int("lines", lines))
	if err := w.trade.ConfirmSettlementInfo(); err != nil {
		w.log.Error("confirm settlement info", zap.Error(err))
	}
}

func (w *Trading) OnSettlementConfirmed(confirm codec.SettlementInfoConfirm) {
	if confirm.IsLast {
		w.log.Info("settlement confirmed",
			zap.String("date", confirm.ConfirmDate),
			zap.String("time", confirm.ConfirmTime))
	}
	if err := w.trade.QueryInstrument(); err != nil {
		w.log.Error("query instrument", zap.Error(err))
	}
}

// OnInstrument accumulates outright contracts and, on the terminal
// page, subscribes each one on the market-data session. Spread and
// combination instruments concatenate their legs in the underlying ID,
// so anything longer than a product code is filtered out. The
// rate-limited fan-out runs on its own goroutine; it must not stall
// inbound trade dispatch for the duration of the catalog.
func (w *Trading) OnInstrument(page codec.Instrument) {
	w.mu.Lock()
	if len(page.UnderlyingInstrID) <= 2 && page.InstrumentID != "" {
		w.pending = append(w.pending, page.InstrumentID)
	}
	if !page.IsLast {
		w.mu.Unlock()
		return
	}
	pending := w.pending
	w.pending = nil
	if w.fanoutCancel != nil {
		w.fanoutCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.fanoutCancel = cancel
	w.mu.Unlock()

	w.log.Info("instrument catalog complete", zap.Int("outrights", len(pending)))
	go w.subscribeAll(ctx, pending)
}

func (w *Trading) subscribeAll(ctx context.Context, instruments []string) {
	for _, id := range instruments {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		if err := w.md.Subscribe([]string{id}); err != nil {
			w.log.Error("subscribe", zap.String("instrument", id), zap.Error(err))
			continue
		}
		w.mu.Lock()
		w.subscribed = append(w.subscribed, id)
		w.mu.Unlock()
	}
}

// OnSocketClosed is full session loss: reset everything and wait for
// the scheduler to reconnect.
func (w *Trading) OnSocketClosed(err error) {
	w.log.Warn("trade session lost", zap.Error(err))
	w.mu.Lock()
	if w.fanoutCancel != nil {
		w.fanoutCancel()
		w.fanoutCancel = nil
	}
	w.settlementLines = 0
	w.pending = nil
	w.subscribed = nil
	w.tradingDay = ""
	w.mu.Unlock()
}

func (w *Trading) OnPerformed(reqID int) {
	w.log.Debug("performed", zap.Int("req_id", reqID))
}

func (w *Trading) OnError(err error) {
	w.log.Error("trade session error", zap.Error(err))
}

func (w *Trading) OnFrontDisconnected(reason string) {
	w.log.Warn("front disconnected", zap.String("reason", reason))
}

func (w *Trading) OnTradingDay(day string) {
	w.log.Info("trading day", zap.String("trading_day", day))
	if day != "" {
		w.mu.Lock()
		w.tradingDay = day
		w.mu.Unlock()
	}
}

func (w *Trading) OnLoggedOut() {
	w.log.Info("logged out")
}

func (w *Trading) OnTradingAccount(account codec.TradingAccount) {
	w.log.Info("trading account",
		zap.String("account", account.AccountID),
		zap.Float64("available", account.Available))
}

func (w *Trading) OnOrderInserted(order codec.Order) {
	w.log.Info("order inserted",
		zap.String("instrument", order.InstrumentID),
		zap.String("order_sys_id", order.OrderSysID))
}

func (w *Trading) OnOrderTraded(trade codec.Trade) {
	w.log.Info("order traded",
		zap.String("trade_id", trade.TradeID),
		zap.Int("volume", trade.Volume))
}

func (w *Trading) OnQueryOrder(order codec.Order) {
	w.log.Info("order", zap.String("order_sys_id", order.OrderSysID),
		zap.Int("status", order.OrderStatus))
}

func (w *Trading) OnOrderDeleted(order codec.Order) {
	w.log.Info("order deleted", zap.String("order_sys_id", order.OrderSysID))
}

func (w *Trading) OnOrderInsertError(failure codec.OrderFailure) {
	w.log.Error("order insert failed",
		zap.String("instrument", failure.InstrumentID),
		zap.String("ref", failure.OrderRef))
}

func (w *Trading) OnOrderInsertReturnError(failure codec.OrderFailure) {
	w.log.Error("order insert returned error",
		zap.String("instrument", failure.InstrumentID),
		zap.String("ref", failure.OrderRef))
}

func (w *Trading) OnOrderDeleteError(failure codec.DeleteFailure) {
	w.log.Error("order delete failed",
		zap.String("order_sys_id", failure.OrderSysID))
}

func (w *Trading) OnOrderDeleteReturnError(failure codec.DeleteFailure) {
	w.log.Error("order delete returned error",
		zap.String("order_sys_id", failure.OrderSysID))
}

func (w *Trading) ensureDir(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.log.Error("mkdir", zap.String("dir", dir), zap.Error(err))
	}
}
