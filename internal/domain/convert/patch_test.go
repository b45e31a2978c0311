package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

func TestPatchToManagedUpdateInvertsManagedUpdateToPatch(t *testing.T) {
	current := sampleAgent()
	name := "Renamed"
	level := "critical"
	status := types.StatusInactive
	in := ManagedUpdate{
		Name:          &name,
		Status:        &status,
		Permissions:   []string{"write:data"},
		SecurityLevel: &level,
	}

	u, ok := PatchToManagedUpdate(ManagedUpdateToPatch(in, current))
	require.True(t, ok)
	assert.Equal(t, &name, u.Name)
	assert.Equal(t, &status, u.Status)
	assert.Equal(t, []string{"write:data"}, u.Permissions)
	assert.Equal(t, &current.Config.UserBinding, u.UserBinding)
	assert.Equal(t, &level, u.SecurityLevel)
	assert.Equal(t, current.Metadata.Tags, u.Tags)

	_, ok = PatchToManagedUpdate(types.AgentPatch{Stats: &types.AgentStats{Rating: 3}})
	assert.False(t, ok)
}

func TestPatchToDiscovery(t *testing.T) {
	stats := types.AgentStats{Rating: 4.5, Reviews: 2, Executions: 7}
	p := types.AgentPatch{
		Description: types.StringPtr("new words"),
		Stats:       &stats,
		Ledger:      &types.LedgerAnchor{OnChain: true, VerificationStatus: types.VerificationVerified},
	}

	d, ok := PatchToDiscovery(p)
	require.True(t, ok)
	assert.Equal(t, "new words", *d.Description)
	assert.Equal(t, 4.5, *d.Rating)
	assert.Equal(t, 2, *d.Reviews)
	assert.Equal(t, int64(7), *d.Executions)
	assert.True(t, *d.Verified)
	assert.True(t, *d.OnChain)
	assert.Nil(t, d.Name)
	assert.Nil(t, d.Tags)

	// the projection owns its values
	stats.Rating = 1
	assert.Equal(t, 4.5, *d.Rating)

	_, ok = PatchToDiscovery(types.AgentPatch{Config: &types.AgentConfig{}})
	assert.False(t, ok)
}

func TestPatchToLedger(t *testing.T) {
	l, ok := PatchToLedger(types.AgentPatch{Ledger: &types.LedgerAnchor{TxHash: "0xstale"}})
	require.True(t, ok)
	require.NotNil(t, l.Anchor)
	assert.Equal(t, types.LedgerAnchor{}, *l.Anchor, "an off-chain anchor carries no chain fields")

	_, ok = PatchToLedger(types.AgentPatch{Description: types.StringPtr("x")})
	assert.False(t, ok)
}
