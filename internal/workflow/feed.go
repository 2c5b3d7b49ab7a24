package workflow

import (
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
)

// TickSink receives every decoded market-data tick.
type TickSink interface {
	OnTick(tick codec.MarketData)
}

// FeedLogin is the slice of the market-data session the feed workflow
// drives.
type FeedLogin interface {
	Login(password string) error
}

// Feed is the market-data side of the workflow: log in once the front
// is up and forward ticks to the sink. It implements
// session.MarketDataHandler.
type Feed struct {
	password string
	log      *zap.Logger
	sink     TickSink

	md FeedLogin
}

func NewFeed(password string, sink TickSink, log *zap.Logger) *Feed {
	return &Feed{password: password, sink: sink, log: log.Named("feed")}
}

func (f *Feed) Bind(md FeedLogin) { f.md = md }

func (f *Feed) OnReady() {
	f.log.Info("bridge ready")
}

func (f *Feed) OnFrontConnected() {
	f.log.Info("front connected")
	if err := f.md.Login(f.password); err != nil {
		f.log.Error("login", zap.Error(err))
	}
}

func (f *Feed) OnLogin(info codec.LoginInfo) {
	f.log.Info("logged in", zap.String("trading_day", info.TradingDay))
}

func (f *Feed) OnMarketData(tick codec.MarketData) {
	f.sink.OnTick(tick)
}

func (f *Feed) OnSocketClosed(err error) {
	f.log.Warn("market-data session lost", zap.Error(err))
}

func (f *Feed) OnPerformed(reqID int) {
	f.log.Debug("performed", zap.Int("req_id", reqID))
}

func (f *Feed) OnError(err error) {
	f.log.Error("market-data session error", zap.Error(err))
}

func (f *Feed) OnFrontDisconnected(reason string) {
	f.log.Warn("front disconnected", zap.String("reason", reason))
}

func (f *Feed) OnHeartbeatTimeout() {
	f.log.Warn("heartbeat timeout")
}

func (f *Feed) OnLogout() {
	f.log.Info("logged out")
}

func (f *Feed) OnTradingDay(day string) {
	f.log.Info("trading day", zap.String("trading_day", day))
}

func (f *Feed) OnSubscribed(instrumentID string) {
	f.log.Debug("subscribed", zap.String("instrument", instrumentID))
}

func (f *Feed) OnUnsubscribed(instrumentID string) {
	f.log.Debug("unsubscribed", zap.String("instrument", instrumentID))
}
