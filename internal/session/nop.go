package session

import "github.com/tabxx/ctpbridge/internal/codec"

// NopTradeHandler ignores every trade event. Embed it to implement
// only the events a consumer cares about.
type NopTradeHandler struct{}

func (NopTradeHandler) OnReady()                                          {}
func (NopTradeHandler) OnSocketClosed(error)                              {}
func (NopTradeHandler) OnPerformed(int)                                   {}
func (NopTradeHandler) OnError(error)                                     {}
func (NopTradeHandler) OnFrontConnected()                                 {}
func (NopTradeHandler) OnFrontDisconnected(string)                        {}
func (NopTradeHandler) OnTradingDay(string)                               {}
func (NopTradeHandler) OnAuthenticated()                                  {}
func (NopTradeHandler) OnLoggedIn(codec.LoginInfo)                        {}
func (NopTradeHandler) OnLoggedOut()                                      {}
func (NopTradeHandler) OnSettlementInfo(codec.SettlementInfo)             {}
func (NopTradeHandler) OnSettlementConfirmed(codec.SettlementInfoConfirm) {}
func (NopTradeHandler) OnTradingAccount(codec.TradingAccount)             {}
func (NopTradeHandler) OnInstrument(codec.Instrument)                     {}
func (NopTradeHandler) OnOrderInserted(codec.Order)                       {}
func (NopTradeHandler) OnOrderTraded(codec.Trade)                         {}
func (NopTradeHandler) OnQueryOrder(codec.Order)                          {}
func (NopTradeHandler) OnOrderDeleted(codec.Order)                        {}
func (NopTradeHandler) OnOrderInsertError(codec.OrderFailure)             {}
func (NopTradeHandler) OnOrderInsertReturnError(codec.OrderFailure)       {}
func (NopTradeHandler) OnOrderDeleteError(codec.DeleteFailure)            {}
func (NopTradeHandler) OnOrderDeleteReturnError(codec.DeleteFailure)      {}

// NopMarketDataHandler ignores every market-data event.
type NopMarketDataHandler struct{}

func (NopMarketDataHandler) OnReady()                      {}
func (NopMarketDataHandler) OnSocketClosed(error)          {}
func (NopMarketDataHandler) OnPerformed(int)               {}
func (NopMarketDataHandler) OnError(error)                 {}
func (NopMarketDataHandler) OnFrontConnected()             {}
func (NopMarketDataHandler) OnFrontDisconnected(string)    {}
func (NopMarketDataHandler) OnHeartbeatTimeout()           {}
func (NopMarketDataHandler) OnLogin(codec.LoginInfo)       {}
func (NopMarketDataHandler) OnLogout()                     {}
func (NopMarketDataHandler) OnTradingDay(string)           {}
func (NopMarketDataHandler) OnSubscribed(string)           {}
func (NopMarketDataHandler) OnUnsubscribed(string)         {}
func (NopMarketDataHandler) OnMarketData(codec.MarketData) {}
