package ratewatch

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/stablerate/keepers/pkg/multicall"
	"github.com/stablerate/keepers/pkg/types"
)

const oracleABI = `[
	{
		"type": "function",
		"name": "latestAnswer",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "int256"}]
	}
]`

const consumerViewABI = `[
	{
		"type": "function",
		"name": "lastRate",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "int256"}]
	},
	{
		"type": "function",
		"name": "lastUpdated",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

// ChainReader reads oracle and consumer state from the watch network and
// fee quotes from every supported network. Consumer reads are batched
// through multicall so a check costs two RPC round trips regardless of
// consumer count.
type ChainReader struct {
	oracle      common.Address
	client      *ethclient.Client
	feeClients  map[types.Network]*ethclient.Client
	batcher     *multicall.Batcher
	oracleABI   abi.ABI
	consumerABI abi.ABI
}

func NewChainReader(oracle common.Address, network types.Network, clients map[types.Network]*ethclient.Client) (*ChainReader, error) {
	client, ok := clients[network]
	if !ok {
		return nil, fmt.Errorf("no client for watch network %s", network)
	}

	parsedOracle, err := abi.JSON(strings.NewReader(oracleABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse oracle ABI: %w", err)
	}
	parsedConsumer, err := abi.JSON(strings.NewReader(consumerViewABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse consumer view ABI: %w", err)
	}
	batcher, err := multicall.NewBatcher(client, common.HexToAddress(multicall.DefaultAddress))
	if err != nil {
		return nil, err
	}

	return &ChainReader{
		oracle:      oracle,
		client:      client,
		feeClients:  clients,
		batcher:     batcher,
		oracleABI:   parsedOracle,
		consumerABI: parsedConsumer,
	}, nil
}

func (r *ChainReader) ReferenceState(ctx context.Context) (ReferenceState, error) {
	header, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return ReferenceState{}, fmt.Errorf("failed to fetch chain head: %w", err)
	}

	data, err := r.oracleABI.Pack("latestAnswer")
	if err != nil {
		return ReferenceState{}, fmt.Errorf("failed to encode oracle call: %w", err)
	}
	raw, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &r.oracle, Data: data}, header.Number)
	if err != nil {
		return ReferenceState{}, fmt.Errorf("failed to call oracle: %w", err)
	}
	unpacked, err := r.oracleABI.Unpack("latestAnswer", raw)
	if err != nil {
		return ReferenceState{}, fmt.Errorf("failed to decode oracle answer: %w", err)
	}
	rate, ok := unpacked[0].(*big.Int)
	if !ok {
		return ReferenceState{}, fmt.Errorf("unexpected oracle answer type %T", unpacked[0])
	}

	return ReferenceState{Rate: rate, BlockNumber: header.Number, BlockTimestamp: header.Time}, nil
}

func (r *ChainReader) ConsumerStates(ctx context.Context, consumers []common.Address, blockNumber *big.Int) ([]ConsumerState, error) {
	rateData, err := r.consumerABI.Pack("lastRate")
	if err != nil {
		return nil, fmt.Errorf("failed to encode lastRate call: %w", err)
	}
	updatedData, err := r.consumerABI.Pack("lastUpdated")
	if err != nil {
		return nil, fmt.Errorf("failed to encode lastUpdated call: %w", err)
	}

	calls := make([]multicall.Call, 0, 2*len(consumers))
	for _, consumer := range consumers {
		calls = append(calls,
			multicall.Call{Target: consumer, CallData: rateData},
			multicall.Call{Target: consumer, CallData: updatedData},
		)
	}

	results, err := r.batcher.TryAggregate(ctx, false, calls, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to batch consumer reads: %w", err)
	}

	states := make([]ConsumerState, len(consumers))
	for i := range consumers {
		rateResult, updatedResult := results[2*i], results[2*i+1]
		if !rateResult.Success || !updatedResult.Success {
			// A reverting consumer has never been refreshed.
			states[i] = ConsumerState{}
			continue
		}
		rate, err := r.consumerABI.Unpack("lastRate", rateResult.ReturnData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode lastRate for %s: %w", consumers[i], err)
		}
		updated, err := r.consumerABI.Unpack("lastUpdated", updatedResult.ReturnData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode lastUpdated for %s: %w", consumers[i], err)
		}
		states[i] = ConsumerState{
			LastRate:    rate[0].(*big.Int),
			LastUpdated: updated[0].(*big.Int).Uint64(),
		}
	}

	return states, nil
}

func (r *ChainReader) SuggestGasPrice(ctx context.Context, network types.Network) (*big.Int, error) {
	client, ok := r.feeClients[network]
	if !ok {
		return nil, fmt.Errorf("no client for network %s", network)
	}
	return client.SuggestGasPrice(ctx)
}
