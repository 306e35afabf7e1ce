package metadata

import "errors"

var (
	// ErrInvalidDescriptor indicates a sidecar mapping with a missing or
	// malformed reserved field, or bytes that do not decode to a mapping.
	ErrInvalidDescriptor = errors.New("invalid metadata descriptor")

	// ErrUnknownDigest indicates a digest algorithm the generator does not
	// implement.
	ErrUnknownDigest = errors.New("unknown digest algorithm")

	// ErrUnknownFormat indicates a sidecar format other than json or yaml.
	ErrUnknownFormat = errors.New("unknown sidecar format")
)
