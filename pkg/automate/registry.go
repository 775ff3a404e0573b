package automate

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/stablerate/keepers/pkg/httpclient"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/triggers"
	keepertypes "github.com/stablerate/keepers/pkg/types"
)

// Task registry contract interface, as deployed by the automation platform
// on every supported network.
const taskRegistryABI = `[
	{
		"type": "function",
		"name": "activeTasks",
		"stateMutability": "view",
		"inputs": [{"name": "owner", "type": "address"}],
		"outputs": [
			{"name": "ids", "type": "bytes32[]"},
			{"name": "names", "type": "string[]"}
		]
	},
	{
		"type": "function",
		"name": "createTask",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "name", "type": "string"},
			{"name": "codeCid", "type": "string"},
			{"name": "trigger", "type": "bytes"}
		],
		"outputs": [{"name": "id", "type": "bytes32"}]
	},
	{
		"type": "function",
		"name": "cancelTask",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "id", "type": "bytes32"}],
		"outputs": []
	},
	{
		"anonymous": false,
		"type": "event",
		"name": "TaskCreated",
		"inputs": [
			{"indexed": true, "name": "id", "type": "bytes32"},
			{"indexed": true, "name": "owner", "type": "address"},
			{"indexed": false, "name": "name", "type": "string"}
		]
	},
	{
		"anonymous": false,
		"type": "event",
		"name": "TaskCancelled",
		"inputs": [
			{"indexed": true, "name": "id", "type": "bytes32"}
		]
	}
]`

// RegistryConfig wires one registry client to one network.
type RegistryConfig struct {
	Network         keepertypes.Network
	RegistryAddress common.Address
	PlatformAPIURL  string
}

type registryClient struct {
	cfg        RegistryConfig
	eth        *ethclient.Client
	chainID    *big.Int
	key        *ecdsa.PrivateKey
	owner      common.Address
	parsedABI  abi.ABI
	httpClient *httpclient.HTTPClient
	logger     logging.Logger
}

var _ Client = (*registryClient)(nil)

// NewRegistryClient builds the on-chain task registry client for one
// network. The ethclient, signing key and platform API endpoint are all
// per-network; no state is shared across networks.
func NewRegistryClient(cfg RegistryConfig, eth *ethclient.Client, key *ecdsa.PrivateKey, logger logging.Logger) (Client, error) {
	parsedABI, err := abi.JSON(strings.NewReader(taskRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse task registry ABI: %w", err)
	}

	chainID, err := eth.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID for %s: %w", cfg.Network, err)
	}

	httpClient, err := httpclient.NewHTTPClient(httpclient.DefaultHTTPRetryConfig(), logger)
	if err != nil {
		return nil, err
	}

	return &registryClient{
		cfg:        cfg,
		eth:        eth,
		chainID:    chainID,
		key:        key,
		owner:      crypto.PubkeyToAddress(key.PublicKey),
		parsedABI:  parsedABI,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *registryClient) Network() keepertypes.Network {
	return c.cfg.Network
}

func (c *registryClient) ActiveTasks(ctx context.Context) ([]Task, error) {
	callData, err := c.parsedABI.Pack("activeTasks", c.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to pack activeTasks call: %w", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &c.cfg.RegistryAddress,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("activeTasks call failed on %s: %w", c.cfg.Network, err)
	}

	results, err := c.parsedABI.Unpack("activeTasks", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack activeTasks result: %w", err)
	}

	ids, ok := results[0].([][32]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected activeTasks ids type %T", results[0])
	}
	names, ok := results[1].([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected activeTasks names type %T", results[1])
	}
	if len(ids) != len(names) {
		return nil, fmt.Errorf("activeTasks returned %d ids but %d names", len(ids), len(names))
	}

	tasks := make([]Task, 0, len(ids))
	for i := range ids {
		tasks = append(tasks, Task{
			ID:      ids[i],
			Name:    names[i],
			Network: c.cfg.Network,
		})
	}
	return tasks, nil
}

func (c *registryClient) CreateTask(ctx context.Context, name string, codeCID string, trigger triggers.Payload) (Task, error) {
	triggerBytes, err := trigger.Encode()
	if err != nil {
		return Task{}, err
	}

	callData, err := c.parsedABI.Pack("createTask", name, codeCID, triggerBytes)
	if err != nil {
		return Task{}, fmt.Errorf("failed to pack createTask call: %w", err)
	}

	receipt, err := c.sendAndWait(ctx, callData)
	if err != nil {
		return Task{}, fmt.Errorf("createTask failed on %s: %w", c.cfg.Network, err)
	}

	taskID, err := c.taskIDFromReceipt(receipt)
	if err != nil {
		return Task{}, err
	}

	c.logger.Info("Created task",
		"network", c.cfg.Network,
		"name", name,
		"task_id", fmt.Sprintf("0x%x", taskID),
		"tx", receipt.TxHash.Hex(),
	)

	return Task{ID: taskID, Name: name, Network: c.cfg.Network}, nil
}

func (c *registryClient) CancelTask(ctx context.Context, taskID [32]byte) error {
	callData, err := c.parsedABI.Pack("cancelTask", taskID)
	if err != nil {
		return fmt.Errorf("failed to pack cancelTask call: %w", err)
	}

	receipt, err := c.sendAndWait(ctx, callData)
	if err != nil {
		return fmt.Errorf("cancelTask failed on %s: %w", c.cfg.Network, err)
	}

	c.logger.Info("Cancelled task",
		"network", c.cfg.Network,
		"task_id", fmt.Sprintf("0x%x", taskID),
		"tx", receipt.TxHash.Hex(),
	)
	return nil
}

func (c *registryClient) SetSecrets(ctx context.Context, taskID [32]byte, secrets map[string]string) error {
	body, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("failed to encode secrets: %w", err)
	}

	url := fmt.Sprintf("%s/tasks/0x%x/secrets", strings.TrimRight(c.cfg.PlatformAPIURL, "/"), taskID)
	resp, err := c.httpClient.Put(ctx, url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to store secrets: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("secret storage rejected with status %d", resp.StatusCode)
	}
	return nil
}

// sendAndWait signs and submits a registry transaction, then blocks until
// it is mined. Failed receipts are surfaced as errors.
func (c *registryClient) sendAndWait(ctx context.Context, callData []byte) (*types.Receipt, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas tip cap: %w", err)
	}

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain head: %w", err)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.owner,
		To:   &c.cfg.RegistryAddress,
		Data: callData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx, err := types.SignNewTx(c.key, types.LatestSignerForChainID(c.chainID), &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &c.cfg.RegistryAddress,
		Data:      callData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// taskIDFromReceipt extracts the task ID from the TaskCreated event in the
// transaction receipt.
func (c *registryClient) taskIDFromReceipt(receipt *types.Receipt) ([32]byte, error) {
	return TaskIDFromLogs(c.parsedABI, receipt.Logs)
}

// TaskIDFromLogs finds the TaskCreated event among the given logs and
// returns the indexed task ID.
func TaskIDFromLogs(parsedABI abi.ABI, logs []*types.Log) ([32]byte, error) {
	createdTopic := parsedABI.Events["TaskCreated"].ID
	for _, log := range logs {
		if len(log.Topics) >= 2 && log.Topics[0] == createdTopic {
			return [32]byte(log.Topics[1]), nil
		}
	}
	return [32]byte{}, fmt.Errorf("no TaskCreated event in receipt")
}

// ParsedRegistryABI exposes the registry ABI for log parsing.
func ParsedRegistryABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(taskRegistryABI))
}
