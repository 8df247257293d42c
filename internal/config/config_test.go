// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
)

const (
	testCandyMachine = "cndyAnrLdpjq1Ssp1z8xxDsB8dxe7u4HL5Nxi2K5WXZ"
	testCandyConfig  = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	testTreasury     = "So11111111111111111111111111111111111111112"
)

func validConfig() Config {
	return Config{
		CandyMachineID:    testCandyMachine,
		CandyConfig:       testCandyConfig,
		TreasuryAddress:   testTreasury,
		Network:           "devnet",
		RPCURL:            "https://api.devnet.solana.com",
		StartDate:         1_640_000_000,
		ConfirmTimeoutMs:  DefaultConfirmTimeoutMs,
		PriceSOL:          DefaultPriceSOL,
		Commitment:        DefaultCommitment,
		PaymentScheme:     "transfer",
		RefreshIntervalMs: DefaultRefreshIntervalMs,
		PollIntervalMs:    DefaultPollIntervalMs,
		StatusRetries:     DefaultStatusRetries,
	}
}

func noDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing candy machine", func(c *Config) { c.CandyMachineID = "" }, true},
		{"missing config", func(c *Config) { c.CandyConfig = "" }, true},
		{"missing treasury", func(c *Config) { c.TreasuryAddress = "" }, true},
		{"bad address", func(c *Config) { c.TreasuryAddress = "not-an-address" }, true},
		{"unknown network", func(c *Config) { c.Network = "localnet" }, true},
		{"missing rpc", func(c *Config) { c.RPCURL = "" }, true},
		{"ws rpc", func(c *Config) { c.RPCURL = "wss://api.devnet.solana.com" }, true},
		{"missing start date", func(c *Config) { c.StartDate = 0 }, true},
		{"zero timeout", func(c *Config) { c.ConfirmTimeoutMs = 0 }, true},
		{"bad price", func(c *Config) { c.PriceSOL = "cheap" }, true},
		{"too precise price", func(c *Config) { c.PriceSOL = "0.0000000001" }, true},
		{"negative price", func(c *Config) { c.PriceSOL = "-1" }, true},
		{"unknown scheme", func(c *Config) { c.PaymentScheme = "barter" }, true},
		{"program scheme", func(c *Config) { c.PaymentScheme = "program" }, false},
		{"legacy commitment", func(c *Config) { c.Commitment = "singleGossip" }, false},
		{"unknown commitment", func(c *Config) { c.Commitment = "eventually" }, true},
		{"zero retries", func(c *Config) { c.StatusRetries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPriceLamports(t *testing.T) {
	cfg := validConfig()
	lamports, err := cfg.PriceLamports()
	require.NoError(t, err)
	assert.Equal(t, uint64(150_000_000), lamports)

	cfg.PriceSOL = "2"
	lamports, err = cfg.PriceLamports()
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000_000), lamports)
}

func TestSaleConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Commitment = "singleGossip"

	sale, err := cfg.SaleConfig()
	require.NoError(t, err)

	assert.Equal(t, solana.MustPublicKeyFromBase58(testCandyMachine), sale.CandyMachine)
	assert.Equal(t, solana.MustPublicKeyFromBase58(testCandyConfig), sale.Config)
	assert.Equal(t, solana.MustPublicKeyFromBase58(testTreasury), sale.Treasury)
	assert.True(t, time.Unix(1_640_000_000, 0).Equal(sale.GoLive))
	assert.Equal(t, 30*time.Second, sale.ConfirmTimeout)
	assert.Equal(t, uint64(150_000_000), sale.PriceLamports)
	assert.Equal(t, candymachine.CandyMachineProgramID, sale.ProgramID)
	assert.Equal(t, rpc.CommitmentSingleGossip, sale.Commitment)
	assert.Equal(t, candymachine.PaymentTransfer, sale.PaymentScheme)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CANDY_CANDY_MACHINE_ID", testCandyMachine)
	t.Setenv("CANDY_CANDY_MACHINE_CONFIG", testCandyConfig)
	t.Setenv("CANDY_TREASURY_ADDRESS", testTreasury)
	t.Setenv("CANDY_SOLANA_NETWORK", "devnet")
	t.Setenv("CANDY_SOLANA_RPC_HOST", "https://api.devnet.solana.com")
	t.Setenv("CANDY_CANDY_START_DATE", "1640000000")
	t.Setenv("CANDY_TX_TIMEOUT", "45000")

	cfg, err := LoadConfig("", noDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, testCandyMachine, cfg.CandyMachineID)
	assert.Equal(t, int64(1_640_000_000), cfg.StartDate)
	assert.Equal(t, 45000, cfg.ConfirmTimeoutMs)
	assert.Equal(t, DefaultPriceSOL, cfg.PriceSOL)
	assert.Equal(t, DefaultPollIntervalMs, cfg.PollIntervalMs)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}

func TestLoadConfigLegacyNames(t *testing.T) {
	t.Setenv("REACT_APP_CANDY_MACHINE_ID", testCandyMachine)
	t.Setenv("REACT_APP_CANDY_MACHINE_CONFIG", testCandyConfig)
	t.Setenv("REACT_APP_TREASURY_ADDRESS", testTreasury)
	t.Setenv("REACT_APP_SOLANA_NETWORK", "mainnet-beta")
	t.Setenv("REACT_APP_SOLANA_RPC_HOST", "https://api.mainnet-beta.solana.com")
	t.Setenv("REACT_APP_CANDY_START_DATE", "1640000000")
	// новое имя имеет приоритет над старым
	t.Setenv("CANDY_SOLANA_NETWORK", "devnet")

	cfg, err := LoadConfig("", noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, testTreasury, cfg.TreasuryAddress)
	assert.Equal(t, "devnet", cfg.Network)
}

func TestLoadConfigFromFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
candy_machine_id: `+testCandyMachine+`
candy_machine_config: `+testCandyConfig+`
solana_network: testnet
solana_rpc_host: https://api.testnet.solana.com
candy_start_date: 1640000000
price_sol: "0.5"
payment_scheme: program
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("REACT_APP_TREASURY_ADDRESS="+testTreasury+"\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REACT_APP_TREASURY_ADDRESS") })

	cfg, err := LoadConfig(configPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, testTreasury, cfg.TreasuryAddress)
	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "program", cfg.PaymentScheme)
	lamports, err := cfg.PriceLamports()
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000_000), lamports)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), noDotEnv(t))
	assert.Error(t, err)
}

func TestLoadConfigValidationFails(t *testing.T) {
	t.Setenv("CANDY_CANDY_MACHINE_ID", testCandyMachine)
	_, err := LoadConfig("", noDotEnv(t))
	assert.ErrorContains(t, err, "candy_machine_config")
}
