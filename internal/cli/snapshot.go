package cli

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
)

const zstdMIME = "application/zstd"

// compressSnapshot wraps an exported snapshot in a zstd frame
func compressSnapshot(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// readSnapshot accepts either a plain JSON snapshot or a zstd-compressed one
func readSnapshot(data []byte) ([]byte, error) {
	if !mimetype.Detect(data).Is(zstdMIME) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return out, nil
}
