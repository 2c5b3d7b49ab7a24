package codec

// Typed records for inbound info blocks. Wire names are the bridge's
// snake_case fields; anything the gateway omits decodes to its zero
// value.

// LoginInfo is carried by Login and TradingDay notifications on both
// sessions.
type LoginInfo struct {
	ReqID       int    `json:"req_id"`
	IsLast      bool   `json:"is_last"`
	TradingDay  string `json:"trading_day"`
	LoginTime   string `json:"login_time"`
	BrokerID    string `json:"broker_id"`
	UserID      string `json:"user_id"`
	SystemName  string `json:"system_name"`
	FrontID     int    `json:"front_id"`
	SessionID   int    `json:"session_id"`
	MaxOrderRef string `json:"max_order_ref"`
}

// SettlementInfo is one page of the end-of-day statement.
type SettlementInfo struct {
	TradingDay   string `json:"trading_day"`
	SettlementID int    `json:"settlement_id"`
	BrokerID     string `json:"broker_id"`
	InvestorID   string `json:"investor_id"`
	SequenceNo   int    `json:"sequence_no"`
	Content      string `json:"content"`
	AccountID    string `json:"account_id"`
	CurrencyID   string `json:"currency_id"`
	ReqID        int    `json:"req_id"`
	IsLast       bool   `json:"is_last"`
}

type SettlementInfoConfirm struct {
	BrokerID     string `json:"broker_id"`
	InvestorID   string `json:"investor_id"`
	ConfirmDate  string `json:"confirm_date"`
	ConfirmTime  string `json:"confirm_time"`
	SettlementID int    `json:"settlement_id"`
	AccountID    string `json:"account_id"`
	CurrencyID   string `json:"currency_id"`
	ReqID        int    `json:"req_id"`
	IsLast       bool   `json:"is_last"`
}

type TradingAccount struct {
	BrokerID       string  `json:"broker_id"`
	AccountID      string  `json:"account_id"`
	PreBalance     float64 `json:"pre_balance"`
	PreMargin      float64 `json:"pre_margin"`
	PreDeposit     float64 `json:"pre_deposit"`
	Deposit        float64 `json:"deposit"`
	Withdraw       float64 `json:"withdraw"`
	FrozenMargin   float64 `json:"frozen_margin"`
	FrozenCash     float64 `json:"frozen_cash"`
	CurrentMargin  float64 `json:"current_margin"`
	Commission     float64 `json:"commission"`
	CloseProfit    float64 `json:"close_profit"`
	PositionProfit float64 `json:"position_profit"`
	Available      float64 `json:"available"`
	WithdrawQuota  float64 `json:"withdraw_quota"`
	TradingDay     string  `json:"trading_day"`
	SettlementID   int     `json:"settlement_id"`
	CurrencyID     string  `json:"currency_id"`
	ReqID          int     `json:"req_id"`
	IsLast         bool    `json:"is_last"`
}

// Instrument is one page of the full contract catalog. The underlying
// instrument ID doubles as the outright/spread discriminator: spread
// and combination instruments concatenate their legs there.
type Instrument struct {
	InstrumentID      string  `json:"instrument_id"`
	ExchangeID        string  `json:"exchange_id"`
	ExchangeInstID    string  `json:"exchange_inst_id"`
	ProductID         string  `json:"product_id"`
	UnderlyingInstrID string  `json:"underlying_instr_id"`
	DeliveryYear      int     `json:"delivery_year"`
	DeliveryMonth     int     `json:"delivery_month"`
	VolumeMultiple    int     `json:"volume_multiple"`
	PriceTick         float64 `json:"price_tick"`
	ReqID             int     `json:"req_id"`
	IsLast            bool    `json:"is_last"`
}

// MarketData is one tick. Depth levels use the bridge's abbreviated
// bp/bv/ap/av names on the wire.
type MarketData struct {
	TradingDay         string  `json:"trading_day"`
	InstrumentID       string  `json:"instrument_id"`
	ExchangeID         string  `json:"exchange_id"`
	ExchangeInstID     string  `json:"exchange_inst_id"`
	LastPrice          float64 `json:"last_price"`
	PreSettlementPrice float64 `json:"pre_settlement_price"`
	PreClosePrice      float64 `json:"pre_close_price"`
	PreOpenInterest    float64 `json:"pre_open_interest"`
	OpenPrice          float64 `json:"open_price"`
	HighestPrice       float64 `json:"highest_price"`
	LowestPrice        float64 `json:"lowest_price"`
	Volume             int64   `json:"volume"`
	Turnover           float64 `json:"turnover"`
	OpenInterest       float64 `json:"open_interest"`
	ClosePrice         float64 `json:"close_price"`
	SettlementPrice    float64 `json:"settlement_price"`
	UpperLimitPrice    float64 `json:"upper_limit_price"`
	LowerLimitPrice    float64 `json:"lower_limit_price"`
	UpdateTime         string  `json:"update_time"`
	UpdateMillisec     int     `json:"update_millisec"`
	BidPrice1          float64 `json:"bp1"`
	BidVolume1         int64   `json:"bv1"`
	AskPrice1          float64 `json:"ap1"`
	AskVolume1         int64   `json:"av1"`
	BidPrice2          float64 `json:"bp2"`
	BidVolume2         int64   `json:"bv2"`
	AskPrice2          float64 `json:"ap2"`
	AskVolume2         int64   `json:"av2"`
	BidPrice3          float64 `json:"bp3"`
	BidVolume3         int64   `json:"bv3"`
	AskPrice3          float64 `json:"ap3"`
	AskVolume3         int64   `json:"av3"`
	BidPrice4          float64 `json:"bp4"`
	BidVolume4         int64   `json:"bv4"`
	AskPrice4          float64 `json:"ap4"`
	AskVolume4         int64   `json:"av4"`
	BidPrice5          float64 `json:"bp5"`
	BidVolume5         int64   `json:"bv5"`
	AskPrice5          float64 `json:"ap5"`
	AskVolume5         int64   `json:"av5"`
	AveragePrice       float64 `json:"average_price"`
	ActionDay          string  `json:"action_day"`
}

// Order is the common order snapshot carried by OrderInserted,
// QueryOrder and OrderDeleted notifications. The bridge emits the same
// field set for all three.
type Order struct {
	BrokerID          string `json:"broker_id"`
	InvestorID        string `json:"investor_id"`
	UserID            string `json:"user_id"`
	ExchangeID        string `json:"exchange_id"`
	ReqID             int    `json:"req_id"`
	Ref               string `json:"ref"`
	OrderLocalID      string `json:"order_local_id"`
	OrderSysID        string `json:"order_sys_id"`
	SequenceNo        int    `json:"sequence_no"`
	InstrumentID      string `json:"instrument_id"`
	InsertDate        string `json:"insert_date"`
	InsertTime        string `json:"insert_time"`
	UpdateTime        string `json:"update_time"`
	CancelTime        string `json:"cancel_time"`
	OrderSubmitStatus int    `json:"order_submit_status"`
	OrderStatus       int    `json:"order_status"`
	VolumeTraded      int    `json:"volume_traded"`
	VolumeTotal       int    `json:"volume_total"`
	StatusMsg         string `json:"status_msg"`
	Direction         int    `json:"direction"`
	Offset            int    `json:"offset"`
	PriceType         int    `json:"price_type"`
	TimeCondition     int    `json:"time_condition"`
	IsLast            bool   `json:"is_last"`
}

type Trade struct {
	BrokerID       string `json:"broker_id"`
	InvestorID     string `json:"investor_id"`
	UserID         string `json:"user_id"`
	ExchangeID     string `json:"exchange_id"`
	TradeID        string `json:"trade_id"`
	OrderSysID     string `json:"order_sys_id"`
	OrderLocalID   string `json:"order_local_id"`
	BrokerOrderSeq int    `json:"broker_order_seq"`
	SettlementID   int    `json:"settlement_id"`
	Volume         int    `json:"volume"`
	Direction      int    `json:"direction"`
	Offset         int    `json:"offset"`
}

// OrderFailure is the rejected input-order echo carried by
// OrderInsertError and OrderInsertReturnError.
type OrderFailure struct {
	BrokerID            string  `json:"broker_id"`
	InvestorID          string  `json:"investor_id"`
	UserID              string  `json:"user_id"`
	ExchangeID          string  `json:"exchange_id"`
	InstrumentID        string  `json:"instrument_id"`
	OrderRef            string  `json:"order_ref"`
	LimitPrice          float64 `json:"limit_price"`
	VolumeTotalOriginal int     `json:"volume_total_original"`
	Direction           int     `json:"direction"`
	Offset              int     `json:"offset"`
	PriceType           int     `json:"price_type"`
	TimeCondition       int     `json:"time_condition"`
	ReqID               int     `json:"req_id"`
	IsLast              bool    `json:"is_last"`
}

// DeleteFailure is the rejected order-action echo carried by
// OrderDeleteError and OrderDeleteReturnError.
type DeleteFailure struct {
	BrokerID     string  `json:"broker_id"`
	InvestorID   string  `json:"investor_id"`
	UserID       string  `json:"user_id"`
	ExchangeID   string  `json:"exchange_id"`
	InstrumentID string  `json:"instrument_id"`
	OrderSysID   string  `json:"order_sys_id"`
	OrderRef     string  `json:"order_ref"`
	LimitPrice   float64 `json:"limit_price"`
	VolumeChange int     `json:"volume_change"`
	StatusMsg    string  `json:"status_msg"`
	ReqID        int     `json:"req_id"`
	IsLast       bool    `json:"is_last"`
}
