package rdf

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestContentID_SHA256(t *testing.T) {
	canonical := []byte("_:c14n0 <urn:p> \"x\" .\n")
	c, err := ContentID(canonical, DigestSHA256)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), c.Version())
	assert.Equal(t, uint64(cid.Raw), c.Prefix().Codec)
	assert.Equal(t, uint64(multihash.SHA2_256), c.Prefix().MhType)

	decoded, err := multihash.Decode(c.Hash())
	require.NoError(t, err)
	sum := sha256.Sum256(canonical)
	assert.Equal(t, sum[:], decoded.Digest)

	parsed, err := cid.Decode(c.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(c))
}

func TestContentID_BLAKE3(t *testing.T) {
	canonical := []byte("_:c14n0 <urn:p> \"x\" .\n")
	c, err := ContentID(canonical, DigestBLAKE3)
	require.NoError(t, err)
	assert.Equal(t, uint64(multihash.BLAKE3), c.Prefix().MhType)

	decoded, err := multihash.Decode(c.Hash())
	require.NoError(t, err)
	sum := blake3.Sum256(canonical)
	assert.Equal(t, sum[:], decoded.Digest)
}

func TestContentID_UnsupportedDigest(t *testing.T) {
	_, err := ContentID([]byte("x"), DigestAlgorithm("md5"))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = ParseDigestAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	for in, want := range map[string]DigestAlgorithm{"": DigestSHA256, "SHA256": DigestSHA256, "sha2-256": DigestSHA256, "BLAKE3": DigestBLAKE3} {
		got, err := ParseDigestAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCanonicalCID_IsomorphicDatasetsShareCID(t *testing.T) {
	a := mustQuads(t, twoChainsInput)
	b := relabelAndShuffle(a, 7)

	for _, digest := range []DigestAlgorithm{DigestSHA256, DigestBLAKE3} {
		ca, err := CanonicalCID(context.Background(), a, digest)
		require.NoError(t, err)
		cb, err := CanonicalCID(context.Background(), b, digest)
		require.NoError(t, err)
		assert.True(t, ca.Equals(cb), "%s: %s != %s", digest, ca, cb)
	}

	other, err := CanonicalCID(context.Background(), mustQuads(t, twoStarsInput), DigestSHA256)
	require.NoError(t, err)
	same, err := CanonicalCID(context.Background(), a, DigestSHA256)
	require.NoError(t, err)
	assert.False(t, other.Equals(same))
}

func TestCanonicalCID_PropagatesErrors(t *testing.T) {
	_, err := CanonicalCID(context.Background(), mustQuads(t, twoStarsInput), DigestSHA256, OptMaxRelatedGroupSize(1))
	assert.ErrorIs(t, err, ErrPermutationLimit)
}
