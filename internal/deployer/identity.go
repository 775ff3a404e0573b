package deployer

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// IdentityHash derives the deterministic digest that makes reconciliation
// idempotent: keccak256 of the raw config bytes, hashed again with the code
// content address. Any change to either input changes the hash and thus the
// task name.
func IdentityHash(raw []byte, codeCID string) string {
	configDigest := crypto.Keccak256(raw)
	combined := crypto.Keccak256(append(configDigest, []byte(codeCID)...))
	return hex.EncodeToString(combined[:6])
}

// TaskName builds the on-chain task name: a human-readable label followed
// by the identity hash. The reconciler matches active tasks by this exact
// string.
func TaskName(keeper, label string, hash string) string {
	return fmt.Sprintf("%s/%s %s", keeper, label, hash)
}
