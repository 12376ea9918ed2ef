package rdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"lukechampine.com/blake3"
)

// DigestAlgorithm selects the multihash used for content identifiers.
type DigestAlgorithm string

const (
	// DigestSHA256 hashes with sha2-256 (the default).
	DigestSHA256 DigestAlgorithm = "sha2-256"
	// DigestBLAKE3 hashes with a 32-byte BLAKE3 digest.
	DigestBLAKE3 DigestAlgorithm = "blake3"
)

// ParseDigestAlgorithm normalizes a digest name. Empty selects DigestSHA256.
func ParseDigestAlgorithm(value string) (DigestAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sha256", string(DigestSHA256):
		return DigestSHA256, nil
	case string(DigestBLAKE3):
		return DigestBLAKE3, nil
	default:
		return "", fmt.Errorf("%w: digest %q", ErrUnsupportedAlgorithm, value)
	}
}

// ContentID returns a CIDv1 with the raw multicodec over canonical N-Quads bytes.
// Isomorphic datasets canonicalized with the same algorithm share a CID.
func ContentID(canonical []byte, digest DigestAlgorithm) (cid.Cid, error) {
	var sum multihash.Multihash
	var err error
	switch digest {
	case "", DigestSHA256:
		sum, err = multihash.Sum(canonical, multihash.SHA2_256, -1)
	case DigestBLAKE3:
		d := blake3.Sum256(canonical)
		sum, err = multihash.Encode(d[:], multihash.BLAKE3)
	default:
		return cid.Undef, fmt.Errorf("%w: digest %q", ErrUnsupportedAlgorithm, digest)
	}
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CanonicalCID canonicalizes quads and returns the content identifier of the
// canonical N-Quads text.
func CanonicalCID(ctx context.Context, quads []Quad, digest DigestAlgorithm, opts ...Option) (cid.Cid, error) {
	canonical, err := Canonicalize(ctx, quads, opts...)
	if err != nil {
		return cid.Undef, err
	}
	return ContentID([]byte(canonical), digest)
}
