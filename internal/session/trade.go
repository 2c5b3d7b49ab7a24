package session

import (
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
)

// TradeHandler consumes the typed event stream of the trade session.
// One method per gateway message code; the compiler keeps consumers
// exhaustive. Methods run serially on the session's read goroutine.
type TradeHandler interface {
	OnReady()
	OnSocketClosed(err error)
	OnPerformed(reqID int)
	OnError(err error)
	OnFrontConnected()
	OnFrontDisconnected(reason string)
	OnTradingDay(day string)
	OnAuthenticated()
	OnLoggedIn(info codec.LoginInfo)
	OnLoggedOut()
	OnSettlementInfo(page codec.SettlementInfo)
	OnSettlementConfirmed(confirm codec.SettlementInfoConfirm)
	OnTradingAccount(account codec.TradingAccount)
	OnInstrument(page codec.Instrument)
	OnOrderInserted(order codec.Order)
	OnOrderTraded(trade codec.Trade)
	OnQueryOrder(order codec.Order)
	OnOrderDeleted(order codec.Order)
	OnOrderInsertError(failure codec.OrderFailure)
	OnOrderInsertReturnError(failure codec.OrderFailure)
	OnOrderDeleteError(failure codec.DeleteFailure)
	OnOrderDeleteReturnError(failure codec.DeleteFailure)
}

// Trade is the order/trading session.
type Trade struct {
	link
	handler TradeHandler
}

type TradeConfig struct {
	FrontAddr string
	FrontPort string
}

func NewTrade(cfg TradeConfig, h TradeHandler, log *zap.Logger) *Trade {
	return newTrade(cfg, h, log, gorillaDial)
}

func newTrade(cfg TradeConfig, h TradeHandler, log *zap.Logger, dial Dialer) *Trade {
	s := &Trade{handler: h}
	s.link = link{
		name:      "trade",
		path:      "/trade",
		frontAddr: cfg.FrontAddr,
		frontPort: cfg.FrontPort,
		dial:      dial,
		log:       log.Named("trade"),
	}
	s.link.dispatch = s.dispatchEnvelope
	s.link.closed = h.OnSocketClosed
	return s
}

// Set registers broker and investor identity with the bridge before
// authentication.
func (s *Trade) Set(brokerID, investorID string) error {
	return s.send(codec.OpSet, map[string]string{
		"broker_id":   brokerID,
		"investor_id": investorID,
	})
}

func (s *Trade) Auth(userID, appID, authCode string) error {
	err := s.send(codec.OpAuth, map[string]string{
		"user_id":   userID,
		"app_id":    appID,
		"auth_code": authCode,
	})
	if err == nil {
		s.setState(Authenticating)
	}
	return err
}

func (s *Trade) Login(userID, password string) error {
	return s.send(codec.OpLogin, map[string]string{
		"user_id":  userID,
		"password": password,
	})
}

func (s *Trade) Logout(userID string) error {
	return s.send(codec.OpLogout, map[string]string{
		"user_id": userID,
	})
}

func (s *Trade) GetTradingDay() error {
	return s.send(codec.OpGetTradingDay, nil)
}

func (s *Trade) QuerySettlementInfo(tradingDay string) error {
	return s.send(codec.OpQuerySettlementInfo, map[string]string{
		"trading_day": tradingDay,
	})
}

func (s *Trade) ConfirmSettlementInfo() error {
	return s.send(codec.OpConfirmSettlementInfo, nil)
}

func (s *Trade) QueryTradingAccount() error {
	return s.send(codec.OpQueryTradingAccount, nil)
}

// QueryInstrument with no filter pages through the full contract
// catalog.
func (s *Trade) QueryInstrument() error {
	return s.send(codec.OpQueryInstrument, nil)
}

// OrderRequest is the fixed-shape insert_order payload.
type OrderRequest struct {
	Instrument    string               `json:"instrument"`
	Exchange      string               `json:"exchange"`
	Ref           string               `json:"ref"`
	Price         float64              `json:"price"`
	Direction     codec.Direction      `json:"direction"`
	Offset        codec.OrderOffset    `json:"offset"`
	Volume        int                  `json:"volume"`
	PriceType     codec.OrderPriceType `json:"price_type"`
	TimeCondition codec.TimeCondition  `json:"time_condition"`
}

func (s *Trade) InsertOrder(req OrderRequest) error {
	return s.send(codec.OpInsertOrder, req)
}

// OrderFilter narrows a query_order; zero fields are omitted and an
// empty filter returns everything.
type OrderFilter struct {
	OrderSysID string `json:"order_sys_id,omitempty"`
	ExchangeID string `json:"exchange_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

func (s *Trade) QueryOrder(filter OrderFilter) error {
	return s.send(codec.OpQueryOrder, filter)
}

func (s *Trade) DeleteOrder(exchange, instrument string, deleteRef int, orderSysID string) error {
	return s.send(codec.OpDeleteOrder, map[string]any{
		"exchange":     exchange,
		"instrument":   instrument,
		"delete_ref":   deleteRef,
		"order_sys_id": orderSysID,
	})
}

func (s *Trade) dispatchEnvelope(env *codec.Envelope) {
	if env.Ready() {
		s.handler.OnReady()
		return
	}
	if env.Msg == nil {
		s.handler.OnError(&UnknownMessageError{Code: -1})
		return
	}
	if env.Err != nil && env.Err.Code != 0 {
		s.handler.OnError(&GatewayError{Code: env.Err.Code, Msg: env.Err.Msg})
		return
	}

	switch codec.TradeCode(*env.Msg) {
	case codec.TradePerformed:
		info, _ := codec.Payload[struct {
			ReqID int `json:"req_id"`
		}](env)
		s.handler.OnPerformed(info.ReqID)
	case codec.TradeError, codec.TradeErrorNull, codec.TradeErrorUnknownValue:
		s.handler.OnError(&GatewayError{Code: *env.Msg, Msg: codec.TradeCode(*env.Msg).String()})
	case codec.TradeConnected:
		s.setState(FrontConnected)
		s.handler.OnFrontConnected()
	case codec.TradeDisconnected:
		s.handler.OnFrontDisconnected(string(env.Info))
	case codec.TradeTradingDay:
		info, err := codec.Payload[struct {
			TradingDay string `json:"trading_day"`
		}](env)
		if err != nil {
			s.handler.OnError(err)
			return
		}
		s.setTradingDay(info.TradingDay)
		s.handler.OnTradingDay(info.TradingDay)
	case codec.TradeAuthenticate:
		s.setState(Authenticated)
		s.handler.OnAuthenticated()
	case codec.TradeLogin:
		info, err := codec.Payload[codec.LoginInfo](env)
		if err != nil {
			s.handler.OnError(err)
			return
		}
		s.setTradingDay(info.TradingDay)
		s.setState(LoggedIn)
		s.handler.OnLoggedIn(info)
	case codec.TradeLogout:
		s.setState(LoggedOut)
		s.handler.OnLoggedOut()
	case codec.TradeSettlementInfo:
		dispatchPayload(s, env, s.handler.OnSettlementInfo)
	case codec.TradeSettlementInfoConfirm:
		dispatchPayload(s, env, s.handler.OnSettlementConfirmed)
	case codec.TradeTradingAccount:
		dispatchPayload(s, env, s.handler.OnTradingAccount)
	case codec.TradeQueryInstrument:
		dispatchPayload(s, env, s.handler.OnInstrument)
	case codec.TradeOrderInserted:
		dispatchPayload(s, env, s.handler.OnOrderInserted)
	case codec.TradeOrderTraded:
		dispatchPayload(s, env, s.handler.OnOrderTraded)
	case codec.TradeQueryOrder:
		dispatchPayload(s, env, s.handler.OnQueryOrder)
	case codec.TradeOrderDeleted:
		dispatchPayload(s, env, s.handler.OnOrderDeleted)
	case codec.TradeOrderInsertError:
		dispatchPayload(s, env, s.handler.OnOrderInsertError)
	case codec.TradeOrderInsertReturnError:
		dispatchPayload(s, env, s.handler.OnOrderInsertReturnError)
	case codec.TradeOrderDeleteError:
		dispatchPayload(s, env, s.handler.OnOrderDeleteError)
	case codec.TradeOrderDeleteReturnError:
		dispatchPayload(s, env, s.handler.OnOrderDeleteReturnError)
	default:
		s.handler.OnError(&UnknownMessageError{Code: *env.Msg})
	}
}

func dispatchPayload[T any](s *Trade, env *codec.Envelope, deliver func(T)) {
	v, err := codec.Payload[T](env)
	if err != nil {
		s.handler.OnError(err)
		return
	}
	deliver(v)
}
