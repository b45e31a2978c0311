package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/slottest"
)

func TestSlotConformance(t *testing.T) {
	for _, compress := range []bool{false, true} {
		slot, err := New(t.TempDir(), WithCompression(compress))
		require.NoError(t, err)
		t.Cleanup(func() { _ = slot.Close() })

		slottest.Run(t, slot)
	}
}

func TestCompressedPayloadOnDisk(t *testing.T) {
	dir := t.TempDir()
	slot, err := New(dir, WithCompression(true))
	require.NoError(t, err)
	defer slot.Close()

	payload := bytes.Repeat([]byte(`{"name":"Data Bot"}`), 200)
	require.NoError(t, slot.Save(context.Background(), "agent-registry:snapshot", payload))

	path, err := slot.pathFor("agent-registry:snapshot")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "6167656e742d72656769737472793a736e617073686f74.snapshot"), path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, zstdMagic))
	assert.Less(t, len(raw), len(payload))

	got, err := slot.Load(context.Background(), "agent-registry:snapshot")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadsPlainFilesWithCompressionEnabled(t *testing.T) {
	dir := t.TempDir()
	plain, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, plain.Save(context.Background(), "k", []byte("plain")))
	require.NoError(t, plain.Close())

	compressed, err := New(dir, WithCompression(true))
	require.NoError(t, err)
	defer compressed.Close()

	got, err := compressed.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "plain", string(got))
}

func TestRejectsEmptyKey(t *testing.T) {
	slot, err := New(t.TempDir())
	require.NoError(t, err)
	defer slot.Close()

	assert.Error(t, slot.Save(context.Background(), " ", []byte("x")))
}
