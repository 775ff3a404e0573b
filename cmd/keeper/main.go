package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/stablerate/keepers/internal/keeper/config"
	"github.com/stablerate/keepers/internal/keeper/ratewatch"
	"github.com/stablerate/keepers/internal/keeper/runner"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/notify"
	"github.com/stablerate/keepers/pkg/types"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	logConfig := logging.NewDefaultConfig(logging.KeeperProcess)
	logConfig.Environment = getEnvironment()
	if err := logging.InitServiceLogger(logConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logging.Shutdown()
	logger := logging.GetServiceLogger()

	logger.Info("Starting keeper service...")

	plan, err := ratewatch.LoadPlan(config.GetPlanPath())
	if err != nil {
		logger.Fatal("Failed to load watch plan", "error", err)
	}

	clients := make(map[types.Network]*ethclient.Client)
	for _, network := range types.SupportedNetworks() {
		client, err := ethclient.Dial(config.GetRPCURL(network))
		if err != nil {
			logger.Fatal("Failed to connect to RPC endpoint", "network", network, "error", err)
		}
		defer client.Close()
		clients[network] = client
	}

	reader, err := ratewatch.NewChainReader(plan.Oracle, plan.Network, clients)
	if err != nil {
		logger.Fatal("Failed to initialize chain reader", "error", err)
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if url := config.GetNotificationURL(); url != "" {
		notifier, err = notify.NewWebhookNotifier(url, logger)
		if err != nil {
			logger.Fatal("Failed to initialize notifier", "error", err)
		}
	}

	checker, err := ratewatch.NewChecker(reader, plan.Consumers, plan.MaxDelta(), notifier, logger)
	if err != nil {
		logger.Fatal("Failed to initialize checker", "error", err)
	}

	sched := runner.NewRunner(logger)
	handler := runner.HandlerFunc{
		HandlerName: "ratewatch",
		Func: func(ctx context.Context) error {
			proposal, err := checker.Check(ctx)
			if err != nil {
				return err
			}
			if !proposal.NoAction() {
				logger.Info("Refresh proposal ready", "calls", len(proposal.Calls))
			}
			return nil
		},
	}
	if err := sched.Register(plan.Trigger.Trigger, handler); err != nil {
		logger.Fatal("Failed to register watch handler", "error", err)
	}

	srv := runner.NewServer(":"+config.GetPort(), logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go sched.Start(ctx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	logger.Info("Shutting down keeper service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}

	logger.Info("Keeper service stopped")
}

func getEnvironment() logging.LogLevel {
	if config.IsDevMode() {
		return logging.Development
	}
	return logging.Production
}
