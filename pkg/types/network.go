package types

// Network identifies a supported deployment domain.
type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkArbitrum Network = "arbitrum"
)

// SupportedNetworks returns the supported networks in their fixed
// processing order.
func SupportedNetworks() []Network {
	return []Network{NetworkEthereum, NetworkArbitrum}
}

// IsSupportedNetwork reports whether the given domain string names a
// supported network.
func IsSupportedNetwork(domain string) bool {
	for _, n := range SupportedNetworks() {
		if string(n) == domain {
			return true
		}
	}
	return false
}
