package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
const (
	DomainModel = "aigo/model/" + HashVersion
	DomainQuery = "aigo/query/" + HashVersion
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content-addressed identity of a model from its
// canonical IR form. Two models with the same variables, domains, factor
// scopes, and weights hash identically regardless of how they were built.
func ModelHash(model IRObject) (string, error) {
	canonical, err := MarshalCanonical(model)
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// QueryID computes the content-addressed ID for a query record.
// The seq component keeps repeated identical queries distinct in the log.
func QueryID(modelHash, variable string, evidence map[string]string, seq int64) (string, error) {
	obj := IRObject{
		"model_hash": IRString(modelHash),
		"variable":   IRString(variable),
		"evidence":   StringObject(evidence),
		"seq":        IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("QueryID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModelHash(model IRObject) string {
	h, err := ModelHash(model)
	if err != nil {
		panic(err)
	}
	return h
}

// MustQueryID is like QueryID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustQueryID(modelHash, variable string, evidence map[string]string, seq int64) string {
	id, err := QueryID(modelHash, variable, evidence, seq)
	if err != nil {
		panic(err)
	}
	return id
}
