package codec

// Order field enums carried in insert_order payloads.

type Direction int

const (
	DirectionBuy Direction = iota
	DirectionSell
)

type OrderOffset int

const (
	OffsetOpen OrderOffset = iota
	OffsetClose
	OffsetForcedClose
	OffsetCloseToday
	OffsetCloseYesterday
	OffsetForcedOff
	OffsetLocalForcedClose
)

type OrderPriceType int

const (
	PriceLimited OrderPriceType = iota
	PriceMarket
	PriceLast
)

type TimeCondition int

const (
	TimeImmediate TimeCondition = iota
	TimeOneDay
)
