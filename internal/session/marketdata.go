package session

import (
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
)

// MarketDataHandler consumes the typed event stream of the market-data
// session. Methods run serially on the session's read goroutine and
// must not block; issue a command and return.
type MarketDataHandler interface {
	OnReady()
	OnSocketClosed(err error)
	OnPerformed(reqID int)
	OnError(err error)
	OnFrontConnected()
	OnFrontDisconnected(reason string)
	OnHeartbeatTimeout()
	OnLogin(info codec.LoginInfo)
	OnLogout()
	OnTradingDay(day string)
	OnSubscribed(instrumentID string)
	OnUnsubscribed(instrumentID string)
	OnMarketData(tick codec.MarketData)
}

// MarketData is the market-data session: quote subscription and the
// tick stream.
type MarketData struct {
	link
	handler  MarketDataHandler
	brokerID string
	userID   string
}

// MarketDataConfig carries the immutable identity and upstream front
// for the session.
type MarketDataConfig struct {
	BrokerID  string
	UserID    string
	FrontAddr string
	FrontPort string
}

func NewMarketData(cfg MarketDataConfig, h MarketDataHandler, log *zap.Logger) *MarketData {
	return newMarketData(cfg, h, log, gorillaDial)
}

func newMarketData(cfg MarketDataConfig, h MarketDataHandler, log *zap.Logger, dial Dialer) *MarketData {
	s := &MarketData{handler: h}
	s.link = link{
		name:      "md",
		path:      "/market_data",
		frontAddr: cfg.FrontAddr,
		frontPort: cfg.FrontPort,
		dial:      dial,
		log:       log.Named("md"),
	}
	s.brokerID = cfg.BrokerID
	s.userID = cfg.UserID
	s.link.dispatch = s.dispatchEnvelope
	s.link.closed = h.OnSocketClosed
	return s
}

// Login authenticates against the front with the session identity.
func (s *MarketData) Login(password string) error {
	return s.send(codec.OpLogin, map[string]string{
		"broker_id": s.brokerID,
		"user_id":   s.userID,
		"password":  password,
	})
}

func (s *MarketData) Logout() error {
	return s.send(codec.OpLogout, map[string]string{
		"user_id": s.userID,
	})
}

func (s *MarketData) Subscribe(instruments []string) error {
	return s.send(codec.OpSubscribe, map[string]any{
		"instruments": instruments,
	})
}

func (s *MarketData) Unsubscribe(instruments []string) error {
	return s.send(codec.OpUnsubscribe, map[string]any{
		"instruments": instruments,
	})
}

func (s *MarketData) dispatchEnvelope(env *codec.Envelope) {
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

	switch codec.MDCode(*env.Msg) {
	case codec.MDPerformed:
		info, _ := codec.Payload[struct {
			ReqID int `json:"req_id"`
		}](env)
		s.handler.OnPerformed(info.ReqID)
	case codec.MDError:
		s.handler.OnError(&GatewayError{Msg: string(env.Info)})
	case codec.MDConnected:
		s.setState(FrontConnected)
		s.handler.OnFrontConnected()
	case codec.MDDisconnected:
		s.handler.OnFrontDisconnected(string(env.Info))
	case codec.MDHeartbeatTimeout:
		s.handler.OnHeartbeatTimeout()
	case codec.MDLogin:
		info, err := codec.Payload[codec.LoginInfo](env)
		if err != nil {
			s.handler.OnError(err)
			return
		}
		s.setTradingDay(info.TradingDay)
		s.setState(LoggedIn)
		s.handler.OnLogin(info)
	case codec.MDLogout:
		s.setState(LoggedOut)
		s.handler.OnLogout()
	case codec.MDTradingDay:
		info, err := codec.Payload[struct {
			TradingDay string `json:"trading_day"`
		}](env)
		if err != nil {
			s.handler.OnError(err)
			return
		}
		s.setTradingDay(info.TradingDay)
		s.handler.OnTradingDay(info.TradingDay)
	case codec.MDSubscribe:
		info, _ := codec.Payload[struct {
			InstrumentID string `json:"instrument_id"`
		}](env)
		s.handler.OnSubscribed(info.InstrumentID)
	case codec.MDUnsubscribe:
		info, _ := codec.Payload[struct {
			InstrumentID string `json:"instrument_id"`
		}](env)
		s.handler.OnUnsubscribed(info.InstrumentID)
	case codec.MDMarketData:
		tick, err := codec.Payload[codec.MarketData](env)
		if err != nil {
			s.handler.OnError(err)
			return
		}
		s.handler.OnMarketData(tick)
	default:
		s.handler.OnError(&UnknownMessageError{Code: *env.Msg})
	}
}
