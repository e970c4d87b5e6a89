// Package config loads the simulator configuration from a YAML file, an
// optional .env file, and environment variable overrides.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the simulator.
type Config struct {
	Servers Servers `yaml:"servers"`
	Account Account `yaml:"account"`
	Pricing Pricing `yaml:"pricing"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Servers holds the two HTTP listeners: the trading API and the market-data
// API. They run as separate processes, as the real services are separate
// hosts.
type Servers struct {
	Trading    Listener `yaml:"trading"`
	MarketData Listener `yaml:"market_data"`
}

// Listener is one network listener.
type Listener struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port address for net.Listen.
func (l Listener) Addr() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// Account seeds the singleton account created at startup.
type Account struct {
	AccountNumber string `yaml:"account_number"`
	Currency      string `yaml:"currency"`
	InitialCash   string `yaml:"initial_cash"`
}

// Pricing configures the mock fill-price table. Values are decimal strings;
// an empty Prices map keeps the built-in table.
type Pricing struct {
	DefaultPrice string            `yaml:"default_price"`
	Prices       map[string]string `yaml:"prices"`
}

// Storage holds the optional order-journal path. Empty disables journaling.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present: trading
// API on :8000, market data on :8001, the built-in price table, and a
// 100000.00 cash account.
func Default() *Config {
	return &Config{
		Servers: Servers{
			Trading:    Listener{Host: "localhost", Port: 8000},
			MarketData: Listener{Host: "localhost", Port: 8001},
		},
		Account: Account{
			AccountNumber: "PA_MOCK_001",
			Currency:      "USD",
			InitialCash:   "100000.00",
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path over the
// defaults, then applies .env and environment variable overrides. A missing
// file is not an error; the defaults plus overrides apply.
func Load(path string) (*Config, error) {
	// Best effort: a .env in the working directory mirrors the original
	// deployment style. Its absence is fine.
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set. The URL-style
// variables carry over from the original deployment, where each simulator
// derived its listen address from its advertised base URL.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOCK_API_BASE_URL"); v != "" {
		overrideListener(&cfg.Servers.Trading, v)
	}
	if v := os.Getenv("MARKET_DATA_SIMULATOR_URL"); v != "" {
		overrideListener(&cfg.Servers.MarketData, v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ALPACASIM_INITIAL_CASH"); v != "" {
		cfg.Account.InitialCash = v
	}
}

// overrideListener parses a base URL like http://localhost:8000 into a
// listener host and port. Unparseable values are ignored.
func overrideListener(l *Listener, baseURL string) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return
	}
	l.Host = u.Hostname()
	if p := u.Port(); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			l.Port = port
		}
	}
}

// ---------------------------------------------------------------------------
// Typed accessors
// ---------------------------------------------------------------------------

// InitialCash parses the configured starting cash balance.
func (c *Config) InitialCash() (decimal.Decimal, error) {
	cash, err := decimal.NewFromString(c.Account.InitialCash)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing account.initial_cash %q: %w", c.Account.InitialCash, err)
	}
	return cash, nil
}

// PriceOverrides parses pricing.prices into decimals, or nil when the
// built-in table should be used.
func (c *Config) PriceOverrides() (map[string]decimal.Decimal, error) {
	if len(c.Pricing.Prices) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(c.Pricing.Prices))
	for sym, raw := range c.Pricing.Prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing pricing.prices[%s] %q: %w", sym, raw, err)
		}
		out[sym] = p
	}
	return out, nil
}

// DefaultPrice parses pricing.default_price, or zero when unset (the ledger
// substitutes its built-in fallback for zero).
func (c *Config) DefaultPrice() (decimal.Decimal, error) {
	if c.Pricing.DefaultPrice == "" {
		return decimal.Decimal{}, nil
	}
	p, err := decimal.NewFromString(c.Pricing.DefaultPrice)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing pricing.default_price %q: %w", c.Pricing.DefaultPrice, err)
	}
	return p, nil
}
