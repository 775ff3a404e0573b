package env

import (
	"regexp"
	"strings"
)

func IsEmpty(value string) bool {
	return value == ""
}

// Ethereum Address
func IsValidEthAddress(address string) bool {
	matched, _ := regexp.MatchString("^0x[0-9a-fA-F]{40}$", address)
	return matched
}

// ECDSA Private Key, with or without the 0x prefix. The signer strips the
// prefix the same way.
func IsValidPrivateKey(privateKey string) bool {
	matched, _ := regexp.MatchString("^[0-9a-fA-F]{64}$", strings.TrimPrefix(privateKey, "0x"))
	return matched
}

// RPC or webhook URL; scheme is required, everything past it is left to
// the dialer to reject.
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") ||
		strings.HasPrefix(url, "ws://") ||
		strings.HasPrefix(url, "wss://")
}

// IPFS CIDv0 (Qm...) or CIDv1 (base32) content address.
func IsValidContentAddress(cid string) bool {
	if strings.HasPrefix(cid, "Qm") && len(cid) == 46 {
		matched, _ := regexp.MatchString("^Qm[1-9A-HJ-NP-Za-km-z]{44}$", cid)
		return matched
	}
	matched, _ := regexp.MatchString("^b[a-z2-7]{58,}$", cid)
	return matched
}
