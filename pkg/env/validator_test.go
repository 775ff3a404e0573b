package env

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"empty string", "", true},
		{"non-empty string", "hello", false},
		{"whitespace", " ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsEmpty(tt.value)
			if result != tt.expected {
				t.Errorf("IsEmpty(%q) = %v, want %v", tt.value, result, tt.expected)
			}
		})
	}
}

func TestIsValidEthAddress(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid address", "0x7f268357A8c2552623316e2562D90e642bB538E5", true},
		{"valid lowercase", "0x7f268357a8c2552623316e2562d90e642bb538e5", true},
		{"missing prefix", "7f268357A8c2552623316e2562D90e642bB538E5", false},
		{"too short", "0x7f268357A8c2552623316e2562D90e642bB538E", false},
		{"too long", "0x7f268357A8c2552623316e2562D90e642bB538E55", false},
		{"non-hex chars", "0x7f268357A8c2552623316e2562D90e642bB538Zz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEthAddress(tt.address)
			if result != tt.expected {
				t.Errorf("IsValidEthAddress(%q) = %v, want %v", tt.address, result, tt.expected)
			}
		})
	}
}

func TestIsValidPrivateKey(t *testing.T) {
	valid := "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"valid key", valid, true},
		{"with 0x prefix", "0x" + valid, true},
		{"prefix only", "0x", false},
		{"too short", valid[:63], false},
		{"empty", "", false},
		{"non-hex", "zz0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidPrivateKey(tt.key)
			if result != tt.expected {
				t.Errorf("IsValidPrivateKey(%q) = %v, want %v", tt.key, result, tt.expected)
			}
		})
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"https", "https://eth-mainnet.example.com/v2/key", true},
		{"http", "http://localhost:8545", true},
		{"websocket", "wss://eth-mainnet.example.com/ws", true},
		{"no scheme", "eth-mainnet.example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidURL(tt.url)
			if result != tt.expected {
				t.Errorf("IsValidURL(%q) = %v, want %v", tt.url, result, tt.expected)
			}
		})
	}
}

func TestIsValidContentAddress(t *testing.T) {
	tests := []struct {
		name     string
		cid      string
		expected bool
	}{
		{"cid v0", "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", true},
		{"cid v1", "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", true},
		{"v0 wrong length", "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbd", false},
		{"garbage", "not-a-cid", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidContentAddress(tt.cid)
			if result != tt.expected {
				t.Errorf("IsValidContentAddress(%q) = %v, want %v", tt.cid, result, tt.expected)
			}
		})
	}
}
