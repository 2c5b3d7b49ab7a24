package codec

// Outbound op names recognized by the bridge.
const (
	OpConnect               = "connect"
	OpSet                   = "set"
	OpLogin                 = "login"
	OpLogout                = "logout"
	OpAuth                  = "auth"
	OpGetTradingDay         = "get_trading_day"
	OpQuerySettlementInfo   = "query_settlement_info"
	OpConfirmSettlementInfo = "confirm_settlement_info"
	OpQueryTradingAccount   = "query_trading_account"
	OpInsertOrder           = "insert_order"
	OpQueryOrder            = "query_order"
	OpDeleteOrder           = "delete_order"
	OpQueryInstrument       = "query_instrument"
	OpSubscribe             = "subscribe"
	OpUnsubscribe           = "unsubscribe"
)

// MDCode is an inbound message code on the market-data session.
type MDCode int

const (
	MDPerformed MDCode = iota
	MDError
	MDConnected
	MDDisconnected
	MDHeartbeatTimeout
	MDLogin
	MDLogout
	MDTradingDay
	MDSubscribe
	MDUnsubscribe
	MDMarketData
)

var mdCodeNames = map[MDCode]string{
	MDPerformed:        "Performed",
	MDError:            "Error",
	MDConnected:        "Connected",
	MDDisconnected:     "Disconnected",
	MDHeartbeatTimeout: "Heartbeat Timeout",
	MDLogin:            "Login",
	MDLogout:           "Logout",
	MDTradingDay:       "Trading Day",
	MDSubscribe:        "Subscribe",
	MDUnsubscribe:      "Unsubscribe",
	MDMarketData:       "Market Data",
}

func (c MDCode) String() string {
	if s, ok := mdCodeNames[c]; ok {
		return s
	}
	return "Unknown"
}

// TradeCode is an inbound message code on the trade session.
type TradeCode int

const (
	TradePerformed TradeCode = iota
	TradeError
	TradeErrorNull
	TradeErrorUnknownValue
	TradeConnected
	TradeTradingDay
	TradeDisconnected
	TradeAuthenticate
	TradeLogin
	TradeLogout
	TradeSettlementInfo
	TradeSettlementInfoConfirm
	TradeTradingAccount
	TradeOrderInsertError
	TradeOrderInsertReturnError
	TradeOrderInserted
	TradeOrderTraded
	TradeQueryOrder
	TradeOrderDeleteError
	TradeOrderDeleteReturnError
	TradeOrderDeleted
	TradeQueryInstrument
)

var tradeCodeNames = map[TradeCode]string{
	TradePerformed:              "Performed",
	TradeError:                  "Error",
	TradeErrorNull:              "NULL Pointer",
	TradeErrorUnknownValue:      "Unknown Value",
	TradeConnected:              "Connected",
	TradeTradingDay:             "Trading Day",
	TradeDisconnected:           "Disconnected",
	TradeAuthenticate:           "Authenticate",
	TradeLogin:                  "Login",
	TradeLogout:                 "Logout",
	TradeSettlementInfo:         "Settlement Info",
	TradeSettlementInfoConfirm:  "Settlement Info Confirm",
	TradeTradingAccount:         "Trading Account",
	TradeOrderInsertError:       "Order Insert Error",
	TradeOrderInsertReturnError: "Order Insert Returned Error",
	TradeOrderInserted:          "Order Inserted",
	TradeOrderTraded:            "Order Traded",
	TradeQueryOrder:             "Query Order",
	TradeOrderDeleteError:       "Failed to delete order",
	TradeOrderDeleteReturnError: "Delete order returned error",
	TradeOrderDeleted:           "Order Deleted",
	TradeQueryInstrument:        "Query Instrument",
}

func (c TradeCode) String() string {
	if s, ok := tradeCodeNames[c]; ok {
		return s
	}
	return "Unknown"
}
