package ratewatch

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/stablerate/keepers/internal/keeper/metrics"
	"github.com/stablerate/keepers/pkg/logging"
	"github.com/stablerate/keepers/pkg/notify"
	"github.com/stablerate/keepers/pkg/types"
)

// TransportStyle selects how a consumer's refresh call is parameterized.
type TransportStyle string

const (
	// TransportDirect consumers take the new rate and a gas limit.
	TransportDirect TransportStyle = "direct"
	// TransportBridged consumers relay the rate across a bridge and
	// additionally need current fee quotes from both sides.
	TransportBridged TransportStyle = "bridged"
)

// ConsumerConfig describes one downstream contract holding a copy of the
// reference rate.
type ConsumerConfig struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	Transport TransportStyle `json:"transport"`
	GasLimit  uint64         `json:"gasLimit"`

	// Bridged transport only.
	SourceNetwork types.Network `json:"sourceNetwork,omitempty"`
	DestNetwork   types.Network `json:"destNetwork,omitempty"`
}

// ReferenceState is the oracle's current rate and the chain head it was
// read at. BlockNumber pins the consumer reads of the same check to one
// block, so rate and timestamps are never compared across blocks.
type ReferenceState struct {
	Rate           *big.Int
	BlockNumber    *big.Int
	BlockTimestamp uint64
}

// ConsumerState is one consumer's last-seen rate and update time.
type ConsumerState struct {
	LastRate    *big.Int
	LastUpdated uint64
}

// StateReader is the chain access the checker needs. The production
// implementation batches consumer reads through multicall; tests substitute
// a fake.
type StateReader interface {
	ReferenceState(ctx context.Context) (ReferenceState, error)
	ConsumerStates(ctx context.Context, consumers []common.Address, blockNumber *big.Int) ([]ConsumerState, error)
	SuggestGasPrice(ctx context.Context, network types.Network) (*big.Int, error)
}

// ProposedCall is one refresh transaction for the automation platform to
// execute. The checker never executes anything itself.
type ProposedCall struct {
	Consumer string
	To       common.Address
	Data     []byte
	GasLimit uint64
}

// Proposal is the bundle of refresh calls for one check.
type Proposal struct {
	Calls []ProposedCall
	Stale []string
}

// NoAction reports whether the check found all consumers fresh.
func (p Proposal) NoAction() bool {
	return len(p.Calls) == 0
}

const consumerABI = `[
	{
		"type": "function",
		"name": "refresh",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "rate", "type": "int256"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "refreshWithFees",
		"stateMutability": "payable",
		"inputs": [
			{"name": "rate", "type": "int256"},
			{"name": "maxFeeSource", "type": "uint256"},
			{"name": "maxFeeDest", "type": "uint256"}
		],
		"outputs": []
	}
]`

// Checker decides whether consumers need a rate refresh. It is pure with
// respect to its inputs: state reads in, proposed calls out.
type Checker struct {
	reader    StateReader
	consumers []ConsumerConfig
	maxDelta  time.Duration
	parsedABI abi.ABI
	notifier  notify.Notifier
	logger    logging.Logger
}

func NewChecker(reader StateReader, consumers []ConsumerConfig, maxDelta time.Duration, notifier notify.Notifier, logger logging.Logger) (*Checker, error) {
	if maxDelta <= 0 {
		return nil, fmt.Errorf("max delta must be positive, got %v", maxDelta)
	}
	for _, consumer := range consumers {
		switch consumer.Transport {
		case TransportDirect:
		case TransportBridged:
			if consumer.SourceNetwork == "" || consumer.DestNetwork == "" {
				return nil, fmt.Errorf("bridged consumer %s needs source and destination networks", consumer.Name)
			}
		default:
			return nil, fmt.Errorf("unknown transport style %q for consumer %s", consumer.Transport, consumer.Name)
		}
	}

	parsedABI, err := abi.JSON(strings.NewReader(consumerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse consumer ABI: %w", err)
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &Checker{
		reader:    reader,
		consumers: consumers,
		maxDelta:  maxDelta,
		parsedABI: parsedABI,
		notifier:  notifier,
		logger:    logger,
	}, nil
}

// Check reads the reference rate and every consumer's state, then proposes
// one refresh call per stale consumer. A consumer is stale when its
// last-seen rate differs from the current rate, or when the time since its
// last update exceeds the configured delta.
func (c *Checker) Check(ctx context.Context) (Proposal, error) {
	start := time.Now()
	defer func() {
		metrics.CheckDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.ChecksRun.Inc()

	reference, err := c.reader.ReferenceState(ctx)
	if err != nil {
		return Proposal{}, fmt.Errorf("failed to read reference state: %w", err)
	}

	addresses := make([]common.Address, len(c.consumers))
	for i, consumer := range c.consumers {
		addresses[i] = consumer.Address
	}

	// All consumer reads go out as one multicall batch, pinned to the
	// block the reference rate was read at.
	states, err := c.reader.ConsumerStates(ctx, addresses, reference.BlockNumber)
	if err != nil {
		return Proposal{}, fmt.Errorf("failed to read consumer states: %w", err)
	}
	if len(states) != len(c.consumers) {
		return Proposal{}, fmt.Errorf("got %d consumer states for %d consumers", len(states), len(c.consumers))
	}

	var proposal Proposal
	for i, consumer := range c.consumers {
		if !c.isStale(reference, states[i]) {
			continue
		}
		call, err := c.buildCall(ctx, consumer, reference.Rate)
		if err != nil {
			return Proposal{}, err
		}
		proposal.Calls = append(proposal.Calls, call)
		proposal.Stale = append(proposal.Stale, consumer.Name)
	}

	metrics.StaleConsumers.Set(float64(len(proposal.Stale)))

	if proposal.NoAction() {
		c.logger.Debug("All consumers fresh", "rate", reference.Rate.String())
		return proposal, nil
	}

	metrics.ProposalsEmitted.Inc()
	c.logger.Info("Proposing refresh calls",
		"rate", reference.Rate.String(),
		"stale", strings.Join(proposal.Stale, ", "),
	)

	message := fmt.Sprintf("refreshing consumers: %s", strings.Join(proposal.Stale, ", "))
	if err := c.notifier.Send(ctx, message); err != nil {
		// Notification is best effort; a dead sink never blocks a refresh.
		c.logger.Warn("Failed to send notification", "error", err)
	}

	return proposal, nil
}

func (c *Checker) isStale(reference ReferenceState, state ConsumerState) bool {
	if state.LastRate == nil || state.LastRate.Cmp(reference.Rate) != 0 {
		return true
	}
	// An update timestamp at or past the reference block cannot be stale;
	// guarding here also keeps the unsigned subtraction from wrapping.
	if state.LastUpdated >= reference.BlockTimestamp {
		return false
	}
	elapsed := time.Duration(reference.BlockTimestamp-state.LastUpdated) * time.Second
	return elapsed > c.maxDelta
}

func (c *Checker) buildCall(ctx context.Context, consumer ConsumerConfig, rate *big.Int) (ProposedCall, error) {
	var data []byte
	var err error

	switch consumer.Transport {
	case TransportDirect:
		data, err = c.parsedABI.Pack("refresh", rate)
	case TransportBridged:
		var sourceFee, destFee *big.Int
		sourceFee, err = c.reader.SuggestGasPrice(ctx, consumer.SourceNetwork)
		if err != nil {
			return ProposedCall{}, fmt.Errorf("failed to quote %s gas price: %w", consumer.SourceNetwork, err)
		}
		destFee, err = c.reader.SuggestGasPrice(ctx, consumer.DestNetwork)
		if err != nil {
			return ProposedCall{}, fmt.Errorf("failed to quote %s gas price: %w", consumer.DestNetwork, err)
		}
		data, err = c.parsedABI.Pack("refreshWithFees", rate, sourceFee, destFee)
	}
	if err != nil {
		return ProposedCall{}, fmt.Errorf("failed to encode refresh for %s: %w", consumer.Name, err)
	}

	return ProposedCall{
		Consumer: consumer.Name,
		To:       consumer.Address,
		Data:     data,
		GasLimit: consumer.GasLimit,
	}, nil
}
