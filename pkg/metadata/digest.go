package metadata

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Digest algorithm names as they appear in the digests mapping.
const (
	DigestSHA256     = "sha256"
	DigestXXH64      = "xxh64"
	DigestBLAKE2b256 = "blake2b-256"
)

var hashers = map[string]func() hash.Hash{
	DigestSHA256:     sha256.New,
	DigestXXH64:      func() hash.Hash { return xxhash.New() },
	DigestBLAKE2b256: newBLAKE2b256,
}

func newBLAKE2b256() hash.Hash {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	return h
}

// SupportedDigests lists the digest algorithms a Generator can compute.
func SupportedDigests() []string {
	out := make([]string, 0, len(hashers))
	for algo := range hashers {
		out = append(out, algo)
	}
	sort.Strings(out)
	return out
}

// normalizeDigests validates algos and returns them deduplicated with
// sha256 first.
func normalizeDigests(algos []string) ([]string, error) {
	out := []string{DigestSHA256}
	seen := map[string]bool{DigestSHA256: true}
	for _, algo := range algos {
		if _, ok := hashers[algo]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, algo)
		}
		if !seen[algo] {
			seen[algo] = true
			out = append(out, algo)
		}
	}
	return out, nil
}
