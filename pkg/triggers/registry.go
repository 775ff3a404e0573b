package triggers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Registry loads contract ABI definitions from a local directory and
// resolves event topic hashes from them. ABI files are named
// `<name>.json` and parsed once.
type Registry struct {
	dir   string
	cache map[string]abi.ABI
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:   dir,
		cache: make(map[string]abi.ABI),
	}
}

// Load returns the parsed ABI for the given name.
func (r *Registry) Load(name string) (abi.ABI, error) {
	if parsed, ok := r.cache[name]; ok {
		return parsed, nil
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s.json", name))
	raw, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to read ABI %s: %w", name, err)
	}

	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI %s: %w", name, err)
	}

	r.cache[name] = parsed
	return parsed, nil
}

// EventTopic resolves the topic hash of an event inside a named ABI.
// The topic is the keccak256 hash of the event's canonical signature.
func (r *Registry) EventTopic(abiName, eventName string) (common.Hash, error) {
	parsed, err := r.Load(abiName)
	if err != nil {
		return common.Hash{}, err
	}

	event, ok := parsed.Events[eventName]
	if !ok {
		return common.Hash{}, fmt.Errorf("event %s not found in ABI %s", eventName, abiName)
	}
	return event.ID, nil
}
