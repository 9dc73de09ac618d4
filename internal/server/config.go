package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
	Bots   []BotConfig    `hcl:"bot,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one table to open at startup
type TableConfig struct {
	Name           string `hcl:"name,label"`
	SmallBlind     int    `hcl:"small_blind"`
	BigBlind       int    `hcl:"big_blind"`
	MaxSeats       int    `hcl:"max_seats,optional"`
	BuyInMin       int    `hcl:"buy_in_min,optional"`
	BuyInMax       int    `hcl:"buy_in_max,optional"`
	ActionTimeout  int    `hcl:"action_timeout_seconds,optional"`
	AutoDeal       bool   `hcl:"auto_deal,optional"`
	Seed           int64  `hcl:"seed,optional"`
}

// BotConfig defines a house bot seated at startup
type BotConfig struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy"`
	Tables   []string `hcl:"tables,optional"`
	BuyIn    int      `hcl:"buy_in,optional"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:          "main",
				SmallBlind:    1,
				BigBlind:      2,
				MaxSeats:      6,
				BuyInMin:      100,
				BuyInMax:      1000,
				ActionTimeout: 30,
				AutoDeal:      true,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	for i := range config.Tables {
		tbl := &config.Tables[i]
		if tbl.MaxSeats == 0 {
			tbl.MaxSeats = 6
		}
		if tbl.BuyInMin == 0 {
			tbl.BuyInMin = tbl.BigBlind * 50
		}
		if tbl.BuyInMax == 0 {
			tbl.BuyInMax = tbl.BigBlind * 500
		}
		if tbl.ActionTimeout == 0 {
			tbl.ActionTimeout = 30
		}
	}

	for i := range config.Bots {
		bot := &config.Bots[i]
		if bot.Strategy == "" {
			bot.Strategy = "call"
		}
		if bot.BuyIn == 0 {
			bot.BuyIn = 200
		}
		if len(bot.Tables) == 0 {
			for _, tbl := range config.Tables {
				bot.Tables = append(bot.Tables, tbl.Name)
			}
		}
	}

	return &config, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	for _, tbl := range c.Tables {
		if tbl.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", tbl.Name)
		}
		if tbl.BigBlind <= tbl.SmallBlind {
			return fmt.Errorf("table %s: big blind must be greater than small blind", tbl.Name)
		}
		if tbl.MaxSeats < 2 || tbl.MaxSeats > 10 {
			return fmt.Errorf("table %s: max seats must be between 2 and 10", tbl.Name)
		}
		if tbl.BuyInMin >= tbl.BuyInMax {
			return fmt.Errorf("table %s: buy-in minimum must be less than maximum", tbl.Name)
		}
	}

	for _, bot := range c.Bots {
		switch bot.Strategy {
		case "call", "fold", "random":
		default:
			return fmt.Errorf("bot %s: invalid strategy %s", bot.Name, bot.Strategy)
		}
		if bot.BuyIn <= 0 {
			return fmt.Errorf("bot %s: buy-in must be positive", bot.Name)
		}
	}

	return nil
}

// ListenAddress returns the host:port the server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// BotsForTable returns the bots configured to sit at a table
func (c *Config) BotsForTable(tableName string) []BotConfig {
	var bots []BotConfig
	for _, bot := range c.Bots {
		for _, name := range bot.Tables {
			if name == tableName {
				bots = append(bots, bot)
				break
			}
		}
	}
	return bots
}
