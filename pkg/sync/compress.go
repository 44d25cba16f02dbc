package sync

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoderOnce sync.Once
	zstdEncoder     *zstd.Encoder
	zstdDecoderOnce sync.Once
	zstdDecoder     *zstd.Decoder
)

func getZstdEncoder() *zstd.Encoder {
	zstdEncoderOnce.Do(func() {
		zstdEncoder, _ = zstd.NewWriter(nil)
	})
	return zstdEncoder
}

func getZstdDecoder() *zstd.Decoder {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, _ = zstd.NewReader(nil)
	})
	return zstdDecoder
}

// Compress applies zstd to a batch envelope's JSON body. No code in this
// module calls it: the cmd/aeonsyncd driver sends batches uncompressed
// and never sets operation.Batch.Compressed.
func Compress(body []byte) ([]byte, error) {
	return getZstdEncoder().EncodeAll(body, make([]byte, 0, len(body))), nil
}

// Decompress reverses Compress.
func Decompress(body []byte) ([]byte, error) {
	out, err := getZstdDecoder().DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("sync: zstd decompress: %w", err)
	}
	return out, nil
}

// CompressionRatio reports how much a compression pass shrank a
// payload, as 1 - len(after)/len(before). No metric records it.
func CompressionRatio(before, after []byte) float64 {
	if len(before) == 0 {
		return 0
	}
	return 1 - float64(len(after))/float64(len(before))
}
