package multicall

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Multicall3 is deployed at the same address on every supported network.
const DefaultAddress = "0xcA11bde05977b3631167028862bE2a173976CA11"

const multicallABI = `[
	{
		"type": "function",
		"name": "tryAggregate",
		"stateMutability": "view",
		"inputs": [
			{"name": "requireSuccess", "type": "bool"},
			{"name": "calls", "type": "tuple[]", "components": [
				{"name": "target", "type": "address"},
				{"name": "callData", "type": "bytes"}
			]}
		],
		"outputs": [
			{"name": "returnData", "type": "tuple[]", "components": [
				{"name": "success", "type": "bool"},
				{"name": "returnData", "type": "bytes"}
			]}
		]
	}
]`

// Call is one read in a batch.
type Call struct {
	Target   common.Address
	CallData []byte
}

// Result is the outcome of one batched read.
type Result struct {
	Success    bool
	ReturnData []byte
}

// ContractCaller is the read-only chain access the batcher needs;
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Batcher packs reads into single Multicall3 tryAggregate calls.
type Batcher struct {
	caller    ContractCaller
	address   common.Address
	parsedABI abi.ABI
}

func NewBatcher(caller ContractCaller, address common.Address) (*Batcher, error) {
	parsedABI, err := abi.JSON(strings.NewReader(multicallABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse multicall ABI: %w", err)
	}
	return &Batcher{
		caller:    caller,
		address:   address,
		parsedABI: parsedABI,
	}, nil
}

// TryAggregate executes all calls in one eth_call at the given block, or
// at the latest block when blockNumber is nil. With requireSuccess false,
// individual call failures come back as Result.Success=false instead of
// failing the batch.
func (b *Batcher) TryAggregate(ctx context.Context, requireSuccess bool, calls []Call, blockNumber *big.Int) ([]Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	callData, err := b.parsedABI.Pack("tryAggregate", requireSuccess, calls)
	if err != nil {
		return nil, fmt.Errorf("failed to pack tryAggregate call: %w", err)
	}

	out, err := b.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &b.address,
		Data: callData,
	}, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("tryAggregate call failed: %w", err)
	}

	unpacked, err := b.parsedABI.Unpack("tryAggregate", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack tryAggregate result: %w", err)
	}

	results := *abi.ConvertType(unpacked[0], new([]Result)).(*[]Result)
	if len(results) != len(calls) {
		return nil, fmt.Errorf("multicall returned %d results for %d calls", len(results), len(calls))
	}
	return results, nil
}
