package content

import "errors"

var (
	// ErrOfflineNoCache means the source is unreachable and no generation is cached
	ErrOfflineNoCache = errors.New("content: offline and no cached content available")
	// ErrMalformedSource means the fetched payload was unusable; the previous generation is kept
	ErrMalformedSource = errors.New("content: malformed source")
	// ErrCorruptCache means the persisted generation could not be decoded and was discarded
	ErrCorruptCache = errors.New("content: corrupt cache")
)
