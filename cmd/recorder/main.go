// Command recorder runs the futures gateway client: it opens the
// market-data and trade sessions on the exchange schedule, records
// every tick to CSV and archives each trading day at session close.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/archive"
	"github.com/tabxx/ctpbridge/internal/config"
	"github.com/tabxx/ctpbridge/internal/observ"
	"github.com/tabxx/ctpbridge/internal/recorder"
	"github.com/tabxx/ctpbridge/internal/schedule"
	"github.com/tabxx/ctpbridge/internal/session"
	"github.com/tabxx/ctpbridge/internal/workflow"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, sync := observ.New(cfg.Prod)
	defer sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	rec := recorder.New(cfg.Record.Dir, logger)
	defer rec.Close()
	arch := archive.New(cfg.Record.Dir, cfg.Record.ArchiveDir, logger)

	feed := workflow.NewFeed(cfg.Client.Password, rec, logger)
	md := session.NewMarketData(session.MarketDataConfig{
		BrokerID:  cfg.Client.BrokerID,
		UserID:    cfg.Client.UserID,
		FrontAddr: cfg.Front.MarketDataAddr,
		FrontPort: cfg.Front.MarketDataPort,
	}, feed, logger)
	feed.Bind(md)

	trading := workflow.NewTrading(workflow.Config{
		Identity: workflow.Identity{
			BrokerID:   cfg.Client.BrokerID,
			UserID:     cfg.Client.UserID,
			InvestorID: cfg.Client.InvestorID,
			Password:   cfg.Client.Password,
			AppID:      cfg.Client.AppID,
			AuthCode:   cfg.Client.AuthCode,
		},
		RecordDir:      cfg.Record.Dir,
		SubscribeRate:  cfg.Subscribe.RatePerSecond,
		SubscribeBurst: cfg.Subscribe.Burst,
	}, logger)
	trade := session.NewTrade(session.TradeConfig{
		FrontAddr: cfg.Front.TradeAddr,
		FrontPort: cfg.Front.TradePort,
	}, trading, logger)
	trading.Bind(trade, md)

	sessions := &gatewaySessions{gw: cfg.Gateway, trade: trade, md: md}
	sched := schedule.New(sessions, &windowClose{Trading: trading, rec: rec, log: logger}, arch, logger)

	if cfg.DebugAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observ.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.DebugAddr, mux); err != nil {
				logger.Warn("debug server", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("recorder starting",
		zap.String("gateway", cfg.Gateway.Host+":"+cfg.Gateway.Port),
		zap.String("record_dir", cfg.Record.Dir))
	sched.Run(ctx)

	logger.Info("shutting down")
	trading.Teardown()
	if err := sessions.Disconnect(); err != nil {
		logger.Error("disconnect", zap.Error(err))
	}
}

// windowClose releases the recorder's file handles whenever the
// scheduler tears a trading window down, on top of the workflow's own
// teardown.
type windowClose struct {
	*workflow.Trading
	rec *recorder.Recorder
	log *zap.Logger
}

func (w *windowClose) Teardown() {
	w.Trading.Teardown()
	if err := w.rec.Close(); err != nil {
		w.log.Error("close tick files", zap.Error(err))
	}
}

// gatewaySessions drives both sessions as one unit for the scheduler.
type gatewaySessions struct {
	gw    config.Gateway
	trade *session.Trade
	md    *session.MarketData
}

func (g *gatewaySessions) Connect() error {
	return errors.Join(
		g.trade.Connect(g.gw.Host, g.gw.Port),
		g.md.Connect(g.gw.Host, g.gw.Port),
	)
}

func (g *gatewaySessions) Disconnect() error {
	return errors.Join(
		g.trade.Disconnect(),
		g.md.Disconnect(),
	)
}
