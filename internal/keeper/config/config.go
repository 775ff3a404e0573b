package config

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/stablerate/keepers/pkg/env"
	"github.com/stablerate/keepers/pkg/types"
)

type Config struct {
	devMode bool

	// RPC endpoints, one per supported network
	ethereumRPCURL string
	arbitrumRPCURL string

	// Watch plan describing oracle, consumers and schedule
	planPath string

	// Health and metrics endpoint
	port string

	// Operational notification webhook, optional
	notificationURL string
}

var cfg Config

// Init loads the environment and validates the global settings.
func Init() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	cfg = Config{
		devMode:         env.GetEnvBool("DEV_MODE", false),
		ethereumRPCURL:  env.GetEnv("ETHEREUM_RPC_URL", ""),
		arbitrumRPCURL:  env.GetEnv("ARBITRUM_RPC_URL", ""),
		planPath:        env.GetEnv("WATCH_PLAN_PATH", "configs/watch-plan.json"),
		port:            env.GetEnv("KEEPER_PORT", "9003"),
		notificationURL: env.GetEnv("NOTIFICATION_WEBHOOK_URL", ""),
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
	if env.IsEmpty(cfg.planPath) {
		return fmt.Errorf("watch plan path is empty")
	}
	if cfg.notificationURL != "" && !env.IsValidURL(cfg.notificationURL) {
		return fmt.Errorf("invalid notification webhook URL: %q", cfg.notificationURL)
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

func GetPlanPath() string {
	return cfg.planPath
}

func GetPort() string {
	return cfg.port
}

func GetNotificationURL() string {
	return cfg.notificationURL
}
