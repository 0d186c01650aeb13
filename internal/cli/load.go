package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/roach88/aigo/internal/compiler"
	"github.com/roach88/aigo/internal/model"
)

// loadModel resolves a model argument. An existing path is loaded as CUE
// and network selects among its networks (optional when there is exactly
// one). A name that is not a path selects a built-in example network.
func loadModel(path, network string) (*model.Model, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if factory, ok := model.Examples()[path]; ok {
			return factory(), nil
		}
	}

	result, errs := compiler.LoadNetworks(path, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	if network != "" {
		m, ok := result.Lookup(network)
		if !ok {
			return nil, &compiler.LoadError{
				Code:    compiler.ErrCodeGeneric,
				Message: fmt.Sprintf("network %q not found in %s (have %s)", network, path, strings.Join(modelNames(result.Models), ", ")),
			}
		}
		return m, nil
	}
	if len(result.Models) > 1 {
		return nil, &compiler.LoadError{
			Code:    compiler.ErrCodeGeneric,
			Message: fmt.Sprintf("%s defines %d networks; choose one with --network (%s)", path, len(result.Models), strings.Join(modelNames(result.Models), ", ")),
		}
	}
	return result.Models[0], nil
}

func modelNames(models []*model.Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}
	slices.Sort(names)
	return names
}

// loadErrorCode returns the load error code carried by err, or E001.
func loadErrorCode(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// parseEvidence parses Name=value pairs.
func parseEvidence(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	evidence := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("evidence %q: expected Name=value", pair)
		}
		if prev, dup := evidence[name]; dup && prev != value {
			return nil, fmt.Errorf("evidence %q: %s already observed as %s", pair, name, prev)
		}
		evidence[name] = value
	}
	return evidence, nil
}

// formatEvidence renders evidence as "A=true, B=false" in name order.
func formatEvidence(evidence map[string]string) string {
	names := make([]string, 0, len(evidence))
	for name := range evidence {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + evidence[name]
	}
	return strings.Join(parts, ", ")
}

// formatQuery renders P(X | evidence).
func formatQuery(variable string, evidence map[string]string) string {
	if len(evidence) == 0 {
		return fmt.Sprintf("P(%s)", variable)
	}
	return fmt.Sprintf("P(%s | %s)", variable, formatEvidence(evidence))
}
