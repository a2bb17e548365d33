package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onchain-health/internal/worker/model"
)

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0x5aaa0c4ef8b5d6a7cd2e4b5c8e8a4a4a2f54f4b5", model.FamilyEVM)
	require.NoError(t, err)
	assert.Equal(t, "0x", got[:2])
	assert.Len(t, got, 42)

	_, err = NormalizeAddress("0x1234", model.FamilyEVM)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NormalizeAddress("  ", model.FamilyEVM)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	sol := "So11111111111111111111111111111111111111112"
	got, err = NormalizeAddress(sol, model.FamilySolana)
	require.NoError(t, err)
	assert.Equal(t, sol, got)

	_, err = NormalizeAddress("0x5aaa0c4ef8b5d6a7cd2e4b5c8e8a4a4a2f54f4b5", model.FamilySolana)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("1000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000", FormatAmount(d))

	_, err = ParseAmount("-1")
	assert.Error(t, err)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "onchain_health:snapshot:avalanche:0xabc", SnapshotKey("avalanche", "0xABC"))
	assert.Equal(t, "onchain_health:snapshot:solana:So11111111111111111111111111111111111111112",
		SnapshotKey("solana", "So11111111111111111111111111111111111111112"))
	assert.Equal(t, "avalanche_0xabc", SnapshotTopicKey("avalanche", "0xAbC"))
}
