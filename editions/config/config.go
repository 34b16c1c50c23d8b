// Package config loads the daemon configuration from TOML and sets up
// logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

const DefaultConfigPath = "editions/config.toml"

var (
	ErrMissingDataDir  = errors.New("data_dir is required")
	ErrMissingAddr     = errors.New("http.addr is required")
	ErrMissingNodeURL  = errors.New("ethereum.node_url is required")
	ErrMissingAdmin    = errors.New("ledger.admin is required")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidRate     = errors.New("rate limit must not be negative")
)

type Config struct {
	DataDir  string         `toml:"data_dir"`
	HTTP     HTTPConfig     `toml:"http"`
	Ethereum EthereumConfig `toml:"ethereum"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Log      LogConfig      `toml:"log"`
}

type HTTPConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
	RateLimit   float64  `toml:"rate_limit"`
	Burst       int      `toml:"burst"`
}

type EthereumConfig struct {
	NodeURL     string   `toml:"node_url"`
	CallTimeout Duration `toml:"call_timeout"`
}

// LedgerConfig seeds a fresh data directory and is ignored once state exists.
type LedgerConfig struct {
	Admin         string            `toml:"admin"`
	MediaAddress  string            `toml:"media_address"`
	MarketAddress string            `toml:"market_address"`
	Alloc         map[string]string `toml:"alloc"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}

// Duration reads Go duration strings such as "10s" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		HTTP: HTTPConfig{
			Addr:        "127.0.0.1:8645",
			CORSOrigins: []string{"*"},
			RateLimit:   50,
			Burst:       100,
		},
		Ethereum: EthereumConfig{
			NodeURL:     "http://localhost:8545",
			CallTimeout: Duration{10 * time.Second},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	return xdg.DataHome + "/editions"
}

// Load reads path over the defaults. A missing file at the default location
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = xdg.SearchConfigFile(DefaultConfigPath)
		if err != nil {
			return cfg, nil
		}
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	log.Debug("config loaded", "path", path)

	return cfg, nil
}

func parseAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s = %q", ErrInvalidAddress, field, s)
	}
	return common.HexToAddress(s), nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.HTTP.Addr == "" {
		return ErrMissingAddr
	}
	if c.HTTP.RateLimit < 0 {
		return ErrInvalidRate
	}
	if c.Ethereum.NodeURL == "" {
		return ErrMissingNodeURL
	}

	_, err := ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}

	_, err = c.Genesis()
	return err
}

// GenesisSpec is the parsed [ledger] section.
type GenesisSpec struct {
	Admin         common.Address
	MediaAddress  common.Address
	MarketAddress common.Address
	Alloc         map[common.Address]*uint256.Int
}

func (c *Config) Genesis() (*GenesisSpec, error) {
	g := &GenesisSpec{Alloc: make(map[common.Address]*uint256.Int)}

	var err error
	if c.Ledger.Admin == "" {
		return nil, ErrMissingAdmin
	}
	g.Admin, err = parseAddress("ledger.admin", c.Ledger.Admin)
	if err != nil {
		return nil, err
	}
	g.MediaAddress, err = parseAddress("ledger.media_address", c.Ledger.MediaAddress)
	if err != nil {
		return nil, err
	}
	g.MarketAddress, err = parseAddress("ledger.market_address", c.Ledger.MarketAddress)
	if err != nil {
		return nil, err
	}

	for k, v := range c.Ledger.Alloc {
		addr, err := parseAddress("ledger.alloc", k)
		if err != nil {
			return nil, err
		}
		amount, err := uint256.FromDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger.alloc.%s = %q", ErrInvalidAmount, k, v)
		}
		g.Alloc[addr] = amount
	}

	return g, nil
}
