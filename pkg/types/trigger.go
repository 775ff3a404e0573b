package types

import (
	"encoding/json"
	"fmt"
)

// TriggerType discriminates the trigger variants on the wire.
type TriggerType string

const (
	TriggerTypeBlock TriggerType = "block"
	TriggerTypeCron  TriggerType = "cron"
	TriggerTypeTime  TriggerType = "time"
	TriggerTypeEvent TriggerType = "event"
)

// IsSupportedTriggerType reports whether the given string names a known
// trigger variant.
func IsSupportedTriggerType(t string) bool {
	switch TriggerType(t) {
	case TriggerTypeBlock, TriggerTypeCron, TriggerTypeTime, TriggerTypeEvent:
		return true
	}
	return false
}

// Trigger is the closed set of trigger variants. The sealed marker method
// keeps the set exhaustive for type switches.
type Trigger interface {
	TriggerType() TriggerType
	sealedTrigger()
}

// BlockTrigger fires on every new block.
type BlockTrigger struct{}

// CronTrigger fires on a cron schedule. The expression is not validated
// locally; the automation platform rejects malformed schedules.
type CronTrigger struct {
	Expression string
}

// TimeTrigger fires on a fixed interval, in milliseconds. Non-positive
// intervals are passed through and fail at the platform.
type TimeTrigger struct {
	IntervalMs int64
}

// EventTrigger fires when a contract emits one of the referenced events.
type EventTrigger struct {
	Address       string
	Filters       []EventFilter
	Confirmations uint64
}

// EventFilter names an event inside a locally stored ABI definition.
type EventFilter struct {
	ABI   string `json:"abi"`
	Event string `json:"event"`
}

func (BlockTrigger) TriggerType() TriggerType { return TriggerTypeBlock }
func (CronTrigger) TriggerType() TriggerType  { return TriggerTypeCron }
func (TimeTrigger) TriggerType() TriggerType  { return TriggerTypeTime }
func (EventTrigger) TriggerType() TriggerType { return TriggerTypeEvent }

func (BlockTrigger) sealedTrigger() {}
func (CronTrigger) sealedTrigger()  {}
func (TimeTrigger) sealedTrigger()  {}
func (EventTrigger) sealedTrigger() {}

// TriggerSpec carries a Trigger through JSON as a tagged object:
//
//	{"type": "block"}
//	{"type": "cron", "cron": "*/5 * * * *"}
//	{"type": "time", "intervalMs": 60000}
//	{"type": "event", "address": "0x..", "events": [...], "confirmations": 2}
type TriggerSpec struct {
	Trigger Trigger
}

type triggerWire struct {
	Type          string        `json:"type"`
	Cron          string        `json:"cron,omitempty"`
	IntervalMs    int64         `json:"intervalMs,omitempty"`
	Address       string        `json:"address,omitempty"`
	Events        []EventFilter `json:"events,omitempty"`
	Confirmations uint64        `json:"confirmations,omitempty"`
}

func (s TriggerSpec) MarshalJSON() ([]byte, error) {
	if s.Trigger == nil {
		return nil, fmt.Errorf("trigger spec has no trigger")
	}
	wire := triggerWire{Type: string(s.Trigger.TriggerType())}
	switch t := s.Trigger.(type) {
	case BlockTrigger:
	case CronTrigger:
		wire.Cron = t.Expression
	case TimeTrigger:
		wire.IntervalMs = t.IntervalMs
	case EventTrigger:
		wire.Address = t.Address
		wire.Events = t.Filters
		wire.Confirmations = t.Confirmations
	}
	return json.Marshal(wire)
}

func (s *TriggerSpec) UnmarshalJSON(data []byte) error {
	var wire triggerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to decode trigger: %w", err)
	}
	switch TriggerType(wire.Type) {
	case TriggerTypeBlock:
		s.Trigger = BlockTrigger{}
	case TriggerTypeCron:
		s.Trigger = CronTrigger{Expression: wire.Cron}
	case TriggerTypeTime:
		s.Trigger = TimeTrigger{IntervalMs: wire.IntervalMs}
	case TriggerTypeEvent:
		s.Trigger = EventTrigger{
			Address:       wire.Address,
			Filters:       wire.Events,
			Confirmations: wire.Confirmations,
		}
	default:
		return &UnsupportedTriggerError{Type: wire.Type}
	}
	return nil
}

// UnsupportedTriggerError reports a trigger tag outside the known variants.
type UnsupportedTriggerError struct {
	Type string
}

func (e *UnsupportedTriggerError) Error() string {
	return fmt.Sprintf("unsupported trigger type: %q", e.Type)
}
