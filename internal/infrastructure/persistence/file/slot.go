// Package file stores each slot key as a file under a root directory.
//
// Writes go to a temporary file that is renamed over the target, so a
// crash never leaves a half-written snapshot behind. With compression
// enabled payloads are zstd frames; Load detects the frame magic and
// reads plain files written before compression was turned on.
package file

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Slot implements persistence.Slot on the local filesystem
type Slot struct {
	root     string
	compress bool

	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Option configures a file slot
type Option func(*Slot)

// WithCompression toggles zstd compression of written payloads
func WithCompression(enabled bool) Option {
	return func(s *Slot) { s.compress = enabled }
}

// New creates a slot rooted at dir, creating the directory if needed
func New(dir string, opts ...Option) (*Slot, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	s := &Slot{root: dir, encoder: enc, decoder: dec}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Slot) pathFor(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	// hex keeps distinct keys distinct on every filesystem, separators and
	// case-insensitive names included
	return filepath.Join(s.root, hex.EncodeToString([]byte(key))+".snapshot"), nil
}

// Load reads the payload stored under key
func (s *Slot) Load(_ context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		s.mu.Lock()
		defer s.mu.Unlock()
		out, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress slot %s: %w", key, err)
		}
		return out, nil
	}
	return data, nil
}

// Save atomically replaces the payload stored under key
func (s *Slot) Save(_ context.Context, key string, data []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload := data
	if s.compress {
		payload = s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	}

	tmp, err := os.CreateTemp(s.root, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Driver() persistence.Driver { return persistence.DriverFile }

// Close releases the zstd encoder and decoder
func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoder.Close()
	return s.encoder.Close()
}
