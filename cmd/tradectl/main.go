// Command tradectl is a one-shot manual trading tool: it logs the
// trade session in, runs a single command against the gateway and
// prints the result.
//
// Usage:
//
//	tradectl -config config.yaml account
//	tradectl -config config.yaml orders
//	tradectl -config config.yaml day
//	tradectl -config config.yaml insert -instrument IF2512 -exchange CFFEX -price 3900.2 -volume 1 -dir buy -offset open
//	tradectl -config config.yaml delete -instrument IF2512 -exchange CFFEX -sysid 12345
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tabxx/ctpbridge/internal/codec"
	"github.com/tabxx/ctpbridge/internal/config"
	"github.com/tabxx/ctpbridge/internal/observ"
	"github.com/tabxx/ctpbridge/internal/session"
)

const commandTimeout = 30 * time.Second

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("usage: tradectl [-config path] account|orders|day|insert|delete [flags]")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, sync := observ.New(cfg.Prod)
	defer sync()

	c := &ctl{
		client: cfg.Client,
		done:   make(chan struct{}),
		ready:  make(chan struct{}),
	}
	trade := session.NewTrade(session.TradeConfig{
		FrontAddr: cfg.Front.TradeAddr,
		FrontPort: cfg.Front.TradePort,
	}, c, logger)
	c.trade = trade

	if err := trade.Connect(cfg.Gateway.Host, cfg.Gateway.Port); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer trade.Disconnect()

	select {
	case <-c.ready:
	case <-time.After(commandTimeout):
		log.Fatal("timed out waiting for login")
	}

	if err := run(trade, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}

	select {
	case <-c.done:
	case <-time.After(commandTimeout):
		log.Fatal("timed out waiting for response")
	}
}

func run(trade *session.Trade, command string, args []string) error {
	switch command {
	case "account":
		return trade.QueryTradingAccount()
	case "orders":
		return trade.QueryOrder(session.OrderFilter{})
	case "day":
		return trade.GetTradingDay()
	case "insert":
		fs := flag.NewFlagSet("insert", flag.ExitOnError)
		instrument := fs.String("instrument", "", "instrument ID")
		exchange := fs.String("exchange", "", "exchange ID")
		price := fs.Float64("price", 0, "limit price")
		volume := fs.Int("volume", 1, "volume")
		dir := fs.String("dir", "buy", "buy or sell")
		offset := fs.String("offset", "open", "open or close")
		fs.Parse(args)
		if *instrument == "" || *exchange == "" {
			return fmt.Errorf("instrument and exchange are required")
		}
		direction := codec.DirectionBuy
		if *dir == "sell" {
			direction = codec.DirectionSell
		}
		off := codec.OffsetOpen
		if *offset == "close" {
			off = codec.OffsetClose
		}
		ref := uuid.NewString()[:8]
		fmt.Printf("inserting order ref=%s\n", ref)
		return trade.InsertOrder(session.OrderRequest{
			Instrument:    *instrument,
			Exchange:      *exchange,
			Ref:           ref,
			Price:         *price,
			Direction:     direction,
			Offset:        off,
			Volume:        *volume,
			PriceType:     codec.PriceLimited,
			TimeCondition: codec.TimeOneDay,
		})
	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		instrument := fs.String("instrument", "", "instrument ID")
		exchange := fs.String("exchange", "", "exchange ID")
		sysID := fs.String("sysid", "", "order system ID")
		fs.Parse(args)
		if *sysID == "" {
			return fmt.Errorf("sysid is required")
		}
		return trade.DeleteOrder(*exchange, *instrument, 1, *sysID)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// ctl drives the login handshake and prints responses. The session
// auto-connects the front on ready.
type ctl struct {
	session.NopTradeHandler
	trade  *session.Trade
	client config.Client
	ready  chan struct{}
	done   chan struct{}
}

func (c *ctl) OnFrontConnected() {
	if err := c.trade.Set(c.client.BrokerID, c.client.InvestorID); err != nil {
		c.fail(err)
		return
	}
	if err := c.trade.Auth(c.client.UserID, c.client.AppID, c.client.AuthCode); err != nil {
		c.fail(err)
	}
}

func (c *ctl) OnAuthenticated() {
	if err := c.trade.Login(c.client.UserID, c.client.Password); err != nil {
		c.fail(err)
	}
}

func (c *ctl) OnLoggedIn(info codec.LoginInfo) {
	fmt.Printf("logged in, trading day %s\n", info.TradingDay)
	close(c.ready)
}

func (c *ctl) OnTradingDay(day string) {
	fmt.Printf("trading day: %s\n", day)
	c.finish()
}

func (c *ctl) OnTradingAccount(account codec.TradingAccount) {
	fmt.Printf("account %s: balance=%.2f available=%.2f margin=%.2f\n",
		account.AccountID, account.PreBalance, account.Available, account.CurrentMargin)
	if account.IsLast {
		c.finish()
	}
}

func (c *ctl) OnQueryOrder(order codec.Order) {
	if order.OrderSysID != "" {
		fmt.Printf("order %s %s status=%d traded=%d/%d %s\n",
			order.OrderSysID, order.InstrumentID, order.OrderStatus,
			order.VolumeTraded, order.VolumeTotal, order.StatusMsg)
	}
	if order.IsLast {
		c.finish()
	}
}

func (c *ctl) OnOrderInserted(order codec.Order) {
	fmt.Printf("order accepted: sys_id=%s %s\n", order.OrderSysID, order.StatusMsg)
	c.finish()
}

func (c *ctl) OnOrderDeleted(order codec.Order) {
	fmt.Printf("order deleted: sys_id=%s\n", order.OrderSysID)
	c.finish()
}

func (c *ctl) OnOrderInsertError(failure codec.OrderFailure) {
	fmt.Printf("order rejected: %s ref=%s\n", failure.InstrumentID, failure.OrderRef)
	c.finish()
}

func (c *ctl) OnOrderInsertReturnError(failure codec.OrderFailure) {
	fmt.Printf("order returned error: %s ref=%s\n", failure.InstrumentID, failure.OrderRef)
	c.finish()
}

func (c *ctl) OnOrderDeleteError(failure codec.DeleteFailure) {
	fmt.Printf("delete rejected: sys_id=%s %s\n", failure.OrderSysID, failure.StatusMsg)
	c.finish()
}

func (c *ctl) OnOrderDeleteReturnError(failure codec.DeleteFailure) {
	fmt.Printf("delete returned error: sys_id=%s %s\n", failure.OrderSysID, failure.StatusMsg)
	c.finish()
}

func (c *ctl) OnError(err error) {
	fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
}

func (c *ctl) OnSocketClosed(err error) {
	c.fail(fmt.Errorf("session lost: %w", err))
}

func (c *ctl) fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func (c *ctl) finish() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
