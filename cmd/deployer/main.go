package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/stablerate/keepers/internal/deployer"
	"github.com/stablerate/keepers/internal/deployer/config"
	"github.com/stablerate/keepers/pkg/automate"
	"github.com/stablerate/keepers/pkg/ipfs"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/signer"
	"github.com/stablerate/keepers/pkg/triggers"
	"github.com/stablerate/keepers/pkg/types"
)

const runTimeout = 15 * time.Minute

func main() {
	app := &cli.App{
		Name:  "stablerate-deployer",
		Usage: "Deploy and reconcile keeper tasks on the automation platform",
		Commands: []*cli.Command{
			reconcileCommand(),
			statusCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Bring deployed tasks into agreement with local keeper configs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply changes without prompting",
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "Override the keeper config directory",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Override the code deployment index path",
			},
			&cli.StringFlag{
				Name:  "abi-dir",
				Usage: "Override the ABI definitions directory",
			},
		},
		Action: runReconcile,
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "List active tasks on every supported network",
		Action: runStatus,
	}
}

type platformClients struct {
	clients map[types.Network]automate.Client
	eth     map[types.Network]*ethclient.Client
}

func (p *platformClients) Close() {
	for _, client := range p.eth {
		client.Close()
	}
}

func setup() (*platformClients, logging.Logger, error) {
	if err := config.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	logConfig := logging.NewDefaultConfig(logging.DeployerProcess)
	if !config.IsDevMode() {
		logConfig.Environment = logging.Production
	}
	if err := logging.InitServiceLogger(logConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := logging.GetServiceLogger()

	key, err := signer.Resolve(config.GetSignerConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve signing credential: %w", err)
	}
	logger.Info("Resolved signing credential", "address", signer.AddressOf(key))

	p := &platformClients{
		clients: make(map[types.Network]automate.Client),
		eth:     make(map[types.Network]*ethclient.Client),
	}
	for _, network := range types.SupportedNetworks() {
		eth, err := ethclient.Dial(config.GetRPCURL(network))
		if err != nil {
			p.Close()
			return nil, nil, fmt.Errorf("failed to connect to %s RPC: %w", network, err)
		}
		p.eth[network] = eth

		client, err := automate.NewRegistryClient(automate.RegistryConfig{
			Network:         network,
			RegistryAddress: common.HexToAddress(config.GetRegistryAddress(network)),
			PlatformAPIURL:  config.GetPlatformAPIURL(),
		}, eth, key, logger)
		if err != nil {
			p.Close()
			return nil, nil, fmt.Errorf("failed to initialize %s registry client: %w", network, err)
		}
		p.clients[network] = client
	}

	return p, logger, nil
}

func runReconcile(c *cli.Context) error {
	platform, logger, err := setup()
	if err != nil {
		return err
	}
	defer platform.Close()
	defer logging.Shutdown()

	configDir := config.GetConfigDir()
	if c.String("config-dir") != "" {
		configDir = c.String("config-dir")
	}
	indexPath := config.GetCodeIndexPath()
	if c.String("index") != "" {
		indexPath = c.String("index")
	}
	abiDir := config.GetABIDir()
	if c.String("abi-dir") != "" {
		abiDir = c.String("abi-dir")
	}

	index, err := deployer.LoadCodeIndex(indexPath)
	if err != nil {
		return err
	}
	definitions, err := deployer.LoadKeeperDefinitions(configDir, index, logger)
	if err != nil {
		return err
	}
	logger.Info("Loaded keeper definitions", "count", len(definitions))

	var resolver ipfs.Resolver = ipfs.NopResolver{}
	if config.GetIPFSAPIURL() != "" || config.GetIPFSGatewayURL() != "" {
		resolver, err = ipfs.NewClient(ipfs.Config{
			APIURL:     config.GetIPFSAPIURL(),
			GatewayURL: config.GetIPFSGatewayURL(),
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize IPFS resolver: %w", err)
		}
	}

	confirm := deployer.AlwaysConfirm
	if !c.Bool("yes") {
		confirm = promptConfirm
	}

	reconciler := deployer.NewReconciler(platform.clients, triggers.NewRegistry(abiDir), resolver, confirm, logger)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	summary, err := reconciler.Run(ctx, definitions)
	if err != nil {
		return err
	}
	logger.Info("Reconciliation complete",
		"created", summary.Created,
		"cancelled", summary.Cancelled,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
	)

	state, err := collectDeployedState(ctx, platform.clients)
	if err != nil {
		logger.Warn("Failed to snapshot deployed state", "error", err)
		return nil
	}
	if err := deployer.SaveDeployedState(config.GetStatePath(), state); err != nil {
		logger.Warn("Failed to save deployed state", "error", err)
	}
	return nil
}

func runStatus(c *cli.Context) error {
	platform, _, err := setup()
	if err != nil {
		return err
	}
	defer platform.Close()
	defer logging.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	for _, network := range types.SupportedNetworks() {
		tasks, err := platform.clients[network].ActiveTasks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list active tasks on %s: %w", network, err)
		}
		fmt.Printf("%s: %d active task(s)\n", network, len(tasks))
		for _, task := range tasks {
			fmt.Printf("  %-60s 0x%x\n", task.Name, task.ID)
		}
	}
	return nil
}

// collectDeployedState snapshots the post-run task set so operators can
// inspect what is live without an RPC round trip.
func collectDeployedState(ctx context.Context, clients map[types.Network]automate.Client) (map[string]string, error) {
	state := make(map[string]string)
	for _, network := range types.SupportedNetworks() {
		client, ok := clients[network]
		if !ok {
			continue
		}
		tasks, err := client.ActiveTasks(ctx)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			state[task.Name] = fmt.Sprintf("0x%x", task.ID)
		}
	}
	return state, nil
}

func promptConfirm(action string) bool {
	fmt.Printf("Proceed to %s? [y/N]: ", action)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
