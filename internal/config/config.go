// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
)

type Config struct {
	CandyMachineID  string `mapstructure:"candy_machine_id"`
	CandyConfig     string `mapstructure:"candy_machine_config"`
	TreasuryAddress string `mapstructure:"treasury_address"`
	Network         string `mapstructure:"solana_network"`
	RPCURL          string `mapstructure:"solana_rpc_host"`
	// StartDate – unix-время начала продажи, если в аккаунте его нет.
	StartDate        int64  `mapstructure:"candy_start_date"`
	ConfirmTimeoutMs int    `mapstructure:"tx_timeout"`
	PriceSOL         string `mapstructure:"price_sol"`
	Commitment       string `mapstructure:"commitment"`
	PaymentScheme    string `mapstructure:"payment_scheme"`

	KeypairPath       string `mapstructure:"keypair_path"`
	WalletsCSV        string `mapstructure:"wallets_csv"`
	RefreshIntervalMs int    `mapstructure:"refresh_interval"`
	PollIntervalMs    int    `mapstructure:"poll_interval"`
	StatusRetries     int    `mapstructure:"status_retries"`

	LogFile      string `mapstructure:"log_file"`
	LogLevel     string `mapstructure:"log_level"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
}

const (
	DefaultConfirmTimeoutMs  = 30000
	DefaultPriceSOL          = "0.15"
	DefaultCommitment        = "confirmed"
	DefaultRefreshIntervalMs = 10000
	DefaultPollIntervalMs    = 500
	DefaultStatusRetries     = 3
	DefaultLogFile           = "candy-mint.log"

	envPrefix       = "CANDY"
	legacyEnvPrefix = "REACT_APP"
)

var validNetworks = map[string]bool{
	"devnet":       true,
	"testnet":      true,
	"mainnet-beta": true,
}

// envKeys are settings that may also come from the legacy REACT_APP_*
// variables of the web front-end's .env file.
var envKeys = []string{
	"candy_machine_id",
	"candy_machine_config",
	"treasury_address",
	"solana_network",
	"solana_rpc_host",
	"candy_start_date",
	"tx_timeout",
	"price_sol",
	"commitment",
	"payment_scheme",
	"keypair_path",
	"wallets_csv",
	"refresh_interval",
	"poll_interval",
	"status_retries",
	"log_file",
	"log_level",
	"debug_logging",
	"metrics_addr",
}

// LoadConfig читает .env (если есть), затем файл конфигурации (если задан)
// и переменные окружения CANDY_* / REACT_APP_*. Переменные окружения
// имеют приоритет над файлом.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()

	defaults := map[string]interface{}{
		"tx_timeout":       DefaultConfirmTimeoutMs,
		"price_sol":        DefaultPriceSOL,
		"commitment":       DefaultCommitment,
		"payment_scheme":   string(candymachine.PaymentTransfer),
		"refresh_interval": DefaultRefreshIntervalMs,
		"poll_interval":    DefaultPollIntervalMs,
		"status_retries":   DefaultStatusRetries,
		"log_file":         DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, key := range envKeys {
		upper := strings.ToUpper(key)
		if err := v.BindEnv(key, envPrefix+"_"+upper, legacyEnvPrefix+"_"+upper); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, cfg.Validate()
}

// loadDotEnv loads the given files, or ".env" when none are given. Missing
// files are skipped; malformed ones are an error.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Validate checks every setting the sale needs.
func (c *Config) Validate() error {
	if c.CandyMachineID == "" {
		return errors.New("missing candy_machine_id in configuration")
	}
	if c.CandyConfig == "" {
		return errors.New("missing candy_machine_config in configuration")
	}
	if c.TreasuryAddress == "" {
		return errors.New("missing treasury_address in configuration")
	}
	for name, addr := range map[string]string{
		"candy_machine_id":     c.CandyMachineID,
		"candy_machine_config": c.CandyConfig,
		"treasury_address":     c.TreasuryAddress,
	} {
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if !validNetworks[c.Network] {
		return fmt.Errorf("invalid solana_network %q: expected devnet, testnet or mainnet-beta", c.Network)
	}
	if c.RPCURL == "" {
		return errors.New("missing solana_rpc_host in configuration")
	}
	if err := validateURL(c.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid solana_rpc_host: %w", err)
	}
	if c.StartDate <= 0 {
		return errors.New("missing candy_start_date in configuration")
	}
	if err := c.validateNumericParams(); err != nil {
		return err
	}
	if _, err := c.PriceLamports(); err != nil {
		return err
	}
	switch candymachine.PaymentScheme(c.PaymentScheme) {
	case candymachine.PaymentTransfer, candymachine.PaymentProgram:
	default:
		return fmt.Errorf("invalid payment_scheme %q", c.PaymentScheme)
	}
	switch rpc.CommitmentType(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized,
		rpc.CommitmentRecent, rpc.CommitmentSingle, rpc.CommitmentSingleGossip,
		rpc.CommitmentMax, rpc.CommitmentRoot:
	default:
		return fmt.Errorf("invalid commitment %q", c.Commitment)
	}
	return nil
}

func (c *Config) validateNumericParams() error {
	if c.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid tx_timeout")
	}
	if c.RefreshIntervalMs < 0 {
		return errors.New("invalid refresh_interval")
	}
	if c.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval")
	}
	if c.StatusRetries <= 0 {
		return errors.New("invalid status_retries")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// PriceLamports converts PriceSOL to lamports.
func (c *Config) PriceLamports() (uint64, error) {
	price, err := decimal.NewFromString(c.PriceSOL)
	if err != nil {
		return 0, fmt.Errorf("invalid price_sol %q: %w", c.PriceSOL, err)
	}
	lamports := price.Shift(9)
	if !lamports.IsInteger() || lamports.IsNegative() {
		return 0, fmt.Errorf("invalid price_sol %q: must be a non-negative amount with at most 9 decimals", c.PriceSOL)
	}
	return uint64(lamports.IntPart()), nil
}

// SaleConfig builds the immutable sale parameters.
func (c *Config) SaleConfig() (candymachine.SaleConfig, error) {
	if err := c.Validate(); err != nil {
		return candymachine.SaleConfig{}, err
	}
	price, _ := c.PriceLamports()

	sale := candymachine.SaleConfig{
		CandyMachine:   solana.MustPublicKeyFromBase58(c.CandyMachineID),
		Config:         solana.MustPublicKeyFromBase58(c.CandyConfig),
		Treasury:       solana.MustPublicKeyFromBase58(c.TreasuryAddress),
		GoLive:         time.Unix(c.StartDate, 0),
		ConfirmTimeout: time.Duration(c.ConfirmTimeoutMs) * time.Millisecond,
		PriceLamports:  price,
		Commitment:     rpc.CommitmentType(c.Commitment),
		PaymentScheme:  candymachine.PaymentScheme(c.PaymentScheme),
	}.WithDefaults()

	return sale, sale.Validate()
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
