package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/slottest"
)

func TestSlotConformance(t *testing.T) {
	slot, err := New(context.Background(), filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	slottest.Run(t, slot)
}

func TestSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "registry.db")

	first, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "k", []byte("persisted")))
	require.NoError(t, first.Close())

	second, err := New(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
	assert.Equal(t, path, second.Path())
}
