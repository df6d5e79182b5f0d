package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/fastsum/foldsum"
	"github.com/fastsum/foldsum/testutil"
)

// Synthetic generates a seeded random corpus of n fixed-size messages.
func Synthetic(n int, seed int64) [][]byte {
	return testutil.NewRNG(seed).Messages(n)
}

// LoadCorpus reads fixed-size message records from a file. Files ending in
// .zst or .lz4 are decompressed transparently; anything else is read raw.
// The file must contain at least one full 4096-byte record; a trailing
// partial record is rejected rather than silently truncated.
func LoadCorpus(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bench: open corpus: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bench: zstd corpus: %w", err)
		}
		defer dec.Close()
		src = dec
	case ".lz4":
		src = lz4.NewReader(f)
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("bench: read corpus: %w", err)
	}

	if len(raw) < foldsum.MessageSize {
		return nil, fmt.Errorf("bench: corpus %s holds %d bytes, need at least one %d-byte record",
			path, len(raw), foldsum.MessageSize)
	}
	if len(raw)%foldsum.MessageSize != 0 {
		return nil, fmt.Errorf("bench: corpus %s length %d is not a multiple of %d",
			path, len(raw), foldsum.MessageSize)
	}

	n := len(raw) / foldsum.MessageSize
	msgs := make([][]byte, n)
	for i := range msgs {
		msgs[i] = raw[i*foldsum.MessageSize : (i+1)*foldsum.MessageSize]
	}
	return msgs, nil
}
