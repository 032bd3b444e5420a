package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Config holds infrastructure-level configuration.
// Per-wallet state (signers, threshold, limits) lives in the database.
type Config struct {
	// Database
	PostgresDSN string

	// Chain
	RPCURL            string
	ChainID           int64 // 0 accepts whatever the RPC endpoint reports
	EntryPointAddress common.Address

	// Wallet factory; when DeployerAddress is unset, wallet creation
	// requests must carry an explicit address.
	DeployerAddress common.Address
	WalletInitCode  []byte

	// Key Vault Backend
	KeyVaultProvider string // local, aws-kms or vault
	KMSKeyID         string
	VaultAddress     string
	VaultToken       string
	VaultTransitKey  string
	LocalMasterKey   string // hex, local provider only

	// Server
	Port int

	// Rate limiting
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		RPCURL:             getEnv("RPC_URL", ""),
		ChainID:            int64(getEnvInt("CHAIN_ID", 0)),
		KeyVaultProvider:   getEnv("KEYVAULT_PROVIDER", "local"),
		KMSKeyID:           getEnv("KMS_KEY_ID", ""),
		VaultAddress:       getEnv("VAULT_ADDR", ""),
		VaultToken:         getEnv("VAULT_TOKEN", ""),
		VaultTransitKey:    getEnv("VAULT_TRANSIT_KEY", "relayer"),
		LocalMasterKey:     getEnv("LOCAL_MASTER_KEY", ""),
		Port:               getEnvInt("PORT", 8080),
		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
	}

	if addr := getEnv("ENTRYPOINT_ADDRESS", ""); addr != "" {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid configuration: ENTRYPOINT_ADDRESS is not a hex address: %s", addr)
		}
		cfg.EntryPointAddress = common.HexToAddress(addr)
	}

	if addr := getEnv("DEPLOYER_ADDRESS", ""); addr != "" {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid configuration: DEPLOYER_ADDRESS is not a hex address: %s", addr)
		}
		cfg.DeployerAddress = common.HexToAddress(addr)
	}
	if code := getEnv("WALLET_INIT_CODE", ""); code != "" {
		decoded, err := hexutil.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: WALLET_INIT_CODE is not 0x-prefixed hex: %w", err)
		}
		cfg.WalletInitCode = decoded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}

	if c.EntryPointAddress == (common.Address{}) {
		return fmt.Errorf("ENTRYPOINT_ADDRESS is required")
	}

	if len(c.WalletInitCode) > 0 && c.DeployerAddress == (common.Address{}) {
		return fmt.Errorf("WALLET_INIT_CODE requires DEPLOYER_ADDRESS")
	}

	switch c.KeyVaultProvider {
	case "local":
		if c.LocalMasterKey == "" {
			return fmt.Errorf("LOCAL_MASTER_KEY is required when KEYVAULT_PROVIDER is 'local'")
		}
	case "aws-kms":
		if c.KMSKeyID == "" {
			return fmt.Errorf("KMS_KEY_ID is required when KEYVAULT_PROVIDER is 'aws-kms'")
		}
	case "vault":
		if c.VaultAddress == "" || c.VaultToken == "" {
			return fmt.Errorf("VAULT_ADDR and VAULT_TOKEN are required when KEYVAULT_PROVIDER is 'vault'")
		}
	default:
		return fmt.Errorf("KEYVAULT_PROVIDER must be 'local', 'aws-kms' or 'vault', got: %s", c.KeyVaultProvider)
	}

	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}

	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
