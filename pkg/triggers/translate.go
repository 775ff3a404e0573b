package triggers

import (
	"encoding/json"
	"fmt"

	"github.com/stablerate/keepers/pkg/types"
)

// Payload is the automation platform's trigger representation. It is
// serialized verbatim into the create-task transaction.
type Payload struct {
	Kind          string   `json:"kind"`
	Cron          string   `json:"cron,omitempty"`
	IntervalMs    int64    `json:"intervalMs,omitempty"`
	Address       string   `json:"address,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Confirmations uint64   `json:"confirmations,omitempty"`
}

// Encode returns the payload's wire bytes.
func (p Payload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trigger payload: %w", err)
	}
	return data, nil
}

// Translate maps an abstract trigger to the platform payload.
//
// Block and Cron pass through untouched; cron syntax is validated by the
// platform, not here. Time intervals are likewise passed through without a
// range check. Event filters are resolved to topic hashes through the ABI
// registry and grouped into a single OR filter.
func Translate(trigger types.Trigger, registry *Registry) (Payload, error) {
	switch t := trigger.(type) {
	case types.BlockTrigger:
		return Payload{Kind: "block"}, nil

	case types.CronTrigger:
		return Payload{Kind: "cron", Cron: t.Expression}, nil

	case types.TimeTrigger:
		return Payload{Kind: "time", IntervalMs: t.IntervalMs}, nil

	case types.EventTrigger:
		topics := make([]string, 0, len(t.Filters))
		for _, filter := range t.Filters {
			topic, err := registry.EventTopic(filter.ABI, filter.Event)
			if err != nil {
				return Payload{}, err
			}
			topics = append(topics, topic.Hex())
		}
		return Payload{
			Kind:          "event",
			Address:       t.Address,
			Topics:        topics,
			Confirmations: t.Confirmations,
		}, nil

	default:
		return Payload{}, fmt.Errorf("unsupported trigger type: %T", trigger)
	}
}
