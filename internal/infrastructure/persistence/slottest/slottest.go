// Package slottest holds the behaviour every persistence.Slot must satisfy.
package slottest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
)

// Run exercises load/save semantics against slot
func Run(t *testing.T, slot persistence.Slot) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := slot.Load(ctx, "never-written")
		assert.True(t, errors.Is(err, persistence.ErrNotFound), "expected ErrNotFound, got %v", err)
	})

	t.Run("round trip", func(t *testing.T) {
		payload := []byte(`{"records":[],"contracts":[],"timestamp":1}`)
		require.NoError(t, slot.Save(ctx, "agent-registry:snapshot", payload))

		got, err := slot.Load(ctx, "agent-registry:snapshot")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, slot.Save(ctx, "k", []byte("first")))
		require.NoError(t, slot.Save(ctx, "k", []byte("second")))

		got, err := slot.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, slot.Save(ctx, "a", []byte("A")))
		require.NoError(t, slot.Save(ctx, "b", []byte("B")))

		a, err := slot.Load(ctx, "a")
		require.NoError(t, err)
		b, err := slot.Load(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "A", string(a))
		assert.Equal(t, "B", string(b))
	})

	t.Run("separators and case keep keys apart", func(t *testing.T) {
		keys := []string{"ns:snap", "ns/snap", `ns\snap`, "ns_snap", "NS:SNAP"}
		for _, k := range keys {
			require.NoError(t, slot.Save(ctx, k, []byte("value of "+k)))
		}
		for _, k := range keys {
			got, err := slot.Load(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, "value of "+k, string(got))
		}
	})
}
