package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/aigo/internal/ir"
)

// marshalEvidence converts evidence to canonical JSON TEXT for storage.
func marshalEvidence(evidence map[string]string) (string, error) {
	data, err := ir.MarshalCanonical(ir.StringObject(evidence))
	if err != nil {
		return "", fmt.Errorf("marshal evidence: %w", err)
	}
	return string(data), nil
}

// marshalOrder converts an elimination order to canonical JSON TEXT.
// A nil order (the model's default) is stored as [].
func marshalOrder(order []string) (string, error) {
	data, err := ir.MarshalCanonical(ir.StringArray(order))
	if err != nil {
		return "", fmt.Errorf("marshal elim order: %w", err)
	}
	return string(data), nil
}

// marshalDistribution converts a posterior to canonical JSON TEXT.
// Canonical float formatting is the shortest round-trip form, so
// unmarshalDistribution recovers the exact float64 values.
func marshalDistribution(dist map[string]float64) (string, error) {
	obj := make(ir.IRObject, len(dist))
	for k, p := range dist {
		obj[k] = ir.IRFloat(p)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal distribution: %w", err)
	}
	return string(data), nil
}

func unmarshalEvidence(data string) (map[string]string, error) {
	evidence := map[string]string{}
	if err := json.Unmarshal([]byte(data), &evidence); err != nil {
		return nil, fmt.Errorf("unmarshal evidence: %w", err)
	}
	return evidence, nil
}

func unmarshalOrder(data string) ([]string, error) {
	var order []string
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, fmt.Errorf("unmarshal elim order: %w", err)
	}
	if len(order) == 0 {
		return nil, nil
	}
	return order, nil
}

func unmarshalDistribution(data string) (map[string]float64, error) {
	var dist map[string]float64
	if err := json.Unmarshal([]byte(data), &dist); err != nil {
		return nil, fmt.Errorf("unmarshal distribution: %w", err)
	}
	if len(dist) == 0 {
		return nil, nil
	}
	return dist, nil
}
