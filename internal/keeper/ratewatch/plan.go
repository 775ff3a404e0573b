package ratewatch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stablerate/keepers/pkg/types"
)

// Plan is the on-disk description of one watch loop: which oracle to
// follow, which consumers to keep fresh, and how often to look.
type Plan struct {
	Oracle          common.Address    `json:"oracle"`
	Network         types.Network     `json:"network"`
	MaxDeltaSeconds uint64            `json:"maxDeltaSeconds"`
	Trigger         types.TriggerSpec `json:"trigger"`
	Consumers       []ConsumerConfig  `json:"consumers"`
}

// MaxDelta returns the staleness bound as a duration.
func (p Plan) MaxDelta() time.Duration {
	return time.Duration(p.MaxDeltaSeconds) * time.Second
}

// LoadPlan reads and validates a watch plan from path.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	if plan.Oracle == (common.Address{}) {
		return Plan{}, fmt.Errorf("plan %s has no oracle address", path)
	}
	if !types.IsSupportedNetwork(string(plan.Network)) {
		return Plan{}, fmt.Errorf("plan %s targets unsupported network %q", path, plan.Network)
	}
	if plan.MaxDeltaSeconds == 0 {
		return Plan{}, fmt.Errorf("plan %s has no staleness bound", path)
	}
	if len(plan.Consumers) == 0 {
		return Plan{}, fmt.Errorf("plan %s lists no consumers", path)
	}

	return plan, nil
}
