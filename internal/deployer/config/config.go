package config

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/stablerate/keepers/pkg/env"
	"github.com/stablerate/keepers/pkg/signer"
	"github.com/stablerate/keepers/pkg/types"
)

type Config struct {
	devMode bool

	// RPC endpoints, one per supported network
	ethereumRPCURL string
	arbitrumRPCURL string

	// Task registry contract addresses, one per supported network
	ethereumRegistryAddress string
	arbitrumRegistryAddress string

	// Automation platform API (secret storage)
	platformAPIURL string

	// Operational notification webhook, optional
	notificationURL string

	// Signing credential: direct key, or keystore + password file
	privateKey   string
	keystorePath string
	passwordPath string

	// Local file layout
	configDir     string
	abiDir        string
	codeIndexPath string
	statePath     string

	// IPFS endpoints for content address verification, optional
	ipfsAPIURL     string
	ipfsGatewayURL string
}

var cfg Config

// Init loads the environment and validates the global settings. Any
// validation failure here aborts the run before side effects.
func Init() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	cfg = Config{
		devMode:                 env.GetEnvBool("DEV_MODE", false),
		ethereumRPCURL:          env.GetEnv("ETHEREUM_RPC_URL", ""),
		arbitrumRPCURL:          env.GetEnv("ARBITRUM_RPC_URL", ""),
		ethereumRegistryAddress: env.GetEnv("TASK_REGISTRY_ADDRESS_ETHEREUM", ""),
		arbitrumRegistryAddress: env.GetEnv("TASK_REGISTRY_ADDRESS_ARBITRUM", ""),
		platformAPIURL:          env.GetEnv("PLATFORM_API_URL", ""),
		notificationURL:         env.GetEnv("NOTIFICATION_WEBHOOK_URL", ""),
		privateKey:              env.GetEnv("KEEPER_PRIVATE_KEY", ""),
		keystorePath:            env.GetEnv("KEEPER_KEYSTORE_PATH", ""),
		passwordPath:            env.GetEnv("KEEPER_PASSWORD_PATH", ""),
		configDir:               env.GetEnv("CONFIG_DIR", "configs"),
		abiDir:                  env.GetEnv("ABI_DIR", "abis"),
		codeIndexPath:           env.GetEnv("CODE_INDEX_PATH", "data/code-index.json"),
		statePath:               env.GetEnv("DEPLOYED_STATE_PATH", "data/deployed-state.json"),
		ipfsAPIURL:              env.GetEnv("IPFS_API_URL", ""),
		ipfsGatewayURL:          env.GetEnv("IPFS_GATEWAY_URL", ""),
	}
	if err := validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func validateConfig() error {
	if !env.IsValidURL(cfg.ethereumRPCURL) {
		return fmt.Errorf("invalid ethereum RPC URL: %q", cfg.ethereumRPCURL)
	}
	if !env.IsValidURL(cfg.arbitrumRPCURL) {
		return fmt.Errorf("invalid arbitrum RPC URL: %q", cfg.arbitrumRPCURL)
	}
	if !env.IsValidEthAddress(cfg.ethereumRegistryAddress) {
		return fmt.Errorf("invalid ethereum task registry address: %q", cfg.ethereumRegistryAddress)
	}
	if !env.IsValidEthAddress(cfg.arbitrumRegistryAddress) {
		return fmt.Errorf("invalid arbitrum task registry address: %q", cfg.arbitrumRegistryAddress)
	}
	if !env.IsValidURL(cfg.platformAPIURL) {
		return fmt.Errorf("invalid platform API URL: %q", cfg.platformAPIURL)
	}
	if cfg.notificationURL != "" && !env.IsValidURL(cfg.notificationURL) {
		return fmt.Errorf("invalid notification webhook URL: %q", cfg.notificationURL)
	}
	if cfg.privateKey != "" && !env.IsValidPrivateKey(cfg.privateKey) {
		return fmt.Errorf("invalid keeper private key")
	}
	if cfg.privateKey == "" && (cfg.keystorePath == "" || cfg.passwordPath == "") {
		return fmt.Errorf("no signing credential: set KEEPER_PRIVATE_KEY, or KEEPER_KEYSTORE_PATH and KEEPER_PASSWORD_PATH")
	}
	return nil
}

func IsDevMode() bool {
	return cfg.devMode
}

// GetRPCURL returns the RPC endpoint for a supported network.
func GetRPCURL(network types.Network) string {
	switch network {
	case types.NetworkEthereum:
		return cfg.ethereumRPCURL
	case types.NetworkArbitrum:
		return cfg.arbitrumRPCURL
	}
	return ""
}

// GetRegistryAddress returns the task registry contract address for a
// supported network.
func GetRegistryAddress(network types.Network) string {
	switch network {
	case types.NetworkEthereum:
		return cfg.ethereumRegistryAddress
	case types.NetworkArbitrum:
		return cfg.arbitrumRegistryAddress
	}
	return ""
}

func GetPlatformAPIURL() string {
	return cfg.platformAPIURL
}

func GetNotificationURL() string {
	return cfg.notificationURL
}

func GetSignerConfig() signer.Config {
	return signer.Config{
		PrivateKey:   cfg.privateKey,
		KeystorePath: cfg.keystorePath,
		PasswordPath: cfg.passwordPath,
	}
}

func GetConfigDir() string {
	return cfg.configDir
}

func GetABIDir() string {
	return cfg.abiDir
}

func GetCodeIndexPath() string {
	return cfg.codeIndexPath
}

func GetStatePath() string {
	return cfg.statePath
}

func GetIPFSAPIURL() string {
	return cfg.ipfsAPIURL
}

func GetIPFSGatewayURL() string {
	return cfg.ipfsGatewayURL
}
