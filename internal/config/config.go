package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Client holds the credentials handed to the gateway during the
// auth/login sequence. Immutable after Load.
type Client struct {
	BrokerID   string `yaml:"broker_id"`
	UserID     string `yaml:"user_id"`
	InvestorID string `yaml:"investor_id"` // defaults to user_id
	Password   string `yaml:"password"`
	AppID      string `yaml:"app_id"`
	AuthCode   string `yaml:"auth_code"`
}

// Gateway is the websocket bridge endpoint.
type Gateway struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Front holds the upstream exchange-facing addresses the bridge
// connects to on behalf of each session.
type Front struct {
	MarketDataAddr string `yaml:"md_addr"`
	MarketDataPort string `yaml:"md_port"`
	TradeAddr      string `yaml:"trade_addr"`
	TradePort      string `yaml:"trade_port"`
}

type Record struct {
	Dir        string `yaml:"dir"`
	ArchiveDir string `yaml:"archive_dir"`
}

type Subscribe struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

type Root struct {
	Client    Client    `yaml:"client"`
	Gateway   Gateway   `yaml:"gateway"`
	Front     Front     `yaml:"front"`
	Record    Record    `yaml:"record"`
	Subscribe Subscribe `yaml:"subscribe"`
	// DebugAddr, when set, serves the metrics dump over HTTP.
	DebugAddr string `yaml:"debug_addr"`
	Prod      bool   `yaml:"prod"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}

	if c.Client.InvestorID == "" {
		c.Client.InvestorID = c.Client.UserID
	}
	if c.Record.Dir == "" {
		c.Record.Dir = "/var/lib/ctpbridge/record"
	}
	if c.Record.ArchiveDir == "" {
		c.Record.ArchiveDir = "/var/lib/ctpbridge/archived"
	}
	if c.Subscribe.RatePerSecond == 0 {
		c.Subscribe.RatePerSecond = 50
	}
	if c.Subscribe.Burst == 0 {
		c.Subscribe.Burst = 10
	}

	if c.Client.BrokerID == "" || c.Client.UserID == "" {
		return c, fmt.Errorf("config: broker_id and user_id are required")
	}
	if c.Gateway.Host == "" || c.Gateway.Port == "" {
		return c, fmt.Errorf("config: gateway host and port are required")
	}
	return c, nil
}
