// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package assets

import (
	"crypto/md5"  //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Digest algorithms accepted by WithDigestAlgorithm.
const (
	DigestMD5     = "md5"
	DigestSHA1    = "sha1"
	DigestSHA256  = "sha256"
	DigestBLAKE2b = "blake2b"
	DigestBLAKE3  = "blake3"
)

// hashFunc returns a constructor for the named digest algorithm.
func hashFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "", DigestMD5:
		return md5.New, nil
	case DigestSHA1:
		return sha1.New, nil
	case DigestSHA256:
		return sha256.New, nil
	case DigestBLAKE2b:
		return func() hash.Hash {
			h, _ := blake2b.New256(nil) // only fails for oversized keys
			return h
		}, nil
	case DigestBLAKE3:
		return func() hash.Hash { return blake3.New() }, nil
	}
	return nil, fmt.Errorf("unknown digest algorithm %q", name)
}
