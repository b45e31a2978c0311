package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/slottest"
)

func TestSlotConformance(t *testing.T) {
	slottest.Run(t, New())
}

func TestSaveCopiesInput(t *testing.T) {
	slot := New()
	data := []byte("abc")
	require.NoError(t, slot.Save(context.Background(), "k", data))
	data[0] = 'z'

	got, err := slot.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, slot.Writes())
}
