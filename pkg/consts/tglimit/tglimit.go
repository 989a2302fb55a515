package tglimit

import "github.com/gotd/td/telegram/uploader"

// Part sizes used by the gotd downloader and uploader.
const (
	MaxPartSize       = 1 << 20
	MaxUploadPartSize = uploader.MaximumPartSize
)

// Single-piece upload ceiling for a regular account, and the split size used
// above it.
const (
	SizeLimit int64 = 2 << 30
	PartSize  int64 = 19 * (1 << 30) / 10
)
