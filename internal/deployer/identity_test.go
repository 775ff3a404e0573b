package deployer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityHashDeterministic(t *testing.T) {
	raw := []byte(`{"domain":"ethereum","trigger":{"type":"block"}}`)

	first := IdentityHash(raw, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	second := IdentityHash(raw, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")

	assert.Equal(t, first, second)
	assert.Len(t, first, 12)
}

func TestIdentityHashChangesWithConfigByte(t *testing.T) {
	cid := "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	raw := []byte(`{"domain":"ethereum","trigger":{"type":"block"}}`)

	modified := make([]byte, len(raw))
	copy(modified, raw)
	modified[len(modified)-2]++ // flip one byte

	assert.NotEqual(t, IdentityHash(raw, cid), IdentityHash(modified, cid))
}

func TestIdentityHashChangesWithCodeAddress(t *testing.T) {
	raw := []byte(`{"domain":"ethereum","trigger":{"type":"block"}}`)

	assert.NotEqual(t,
		IdentityHash(raw, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"),
		IdentityHash(raw, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdH"),
	)
}

func TestTaskName(t *testing.T) {
	assert.Equal(t, "ratewatch/mainnet abcdef123456",
		TaskName("ratewatch", "mainnet", "abcdef123456"))
}
