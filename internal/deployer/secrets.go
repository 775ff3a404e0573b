package deployer

import (
	"fmt"
	"os"
	"sort"
)

// ResolveSecrets maps each secret key to the value of its named environment
// variable. Any unset variable fails the whole resolution; nothing is
// deployed for a config with unresolved secrets.
func ResolveSecrets(secrets map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(secrets))
	var missing []string

	for key, envVar := range secrets {
		value, ok := os.LookupEnv(envVar)
		if !ok {
			missing = append(missing, envVar)
			continue
		}
		resolved[key] = value
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing secret environment variables: %v", missing)
	}
	return resolved, nil
}
