package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared zstd coders; both are safe for concurrent use
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<20))
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

func compressValue(value string) string {
	return string(zstdEncoder.EncodeAll([]byte(value), nil))
}

func decompressValue(value string) (string, error) {
	out, err := zstdDecoder.DecodeAll([]byte(value), nil)
	if err != nil {
		return "", fmt.Errorf("zstd decompress: %w", err)
	}
	return string(out), nil
}
