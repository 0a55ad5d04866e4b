package param

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// Static serves parameters from memory, keyed by full path.
type Static map[string]string

func (s Static) Fetch(_ context.Context, path string) (string, error) {
	v, ok := s[path]
	if !ok {
		return "", fmt.Errorf("parameter %s not found", path)
	}
	return v, nil
}

// FetchAll returns every value below path, ordered by key.
func (s Static) FetchAll(_ context.Context, path string) ([]string, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	keys := make([]string, 0, len(s))
	for k := range s {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = s[k]
	}
	return values, nil
}

// String returns value when set, otherwise the parameter at path. Both empty
// yields the empty string.
func String(ctx context.Context, f Fetcher, value, path string) (string, error) {
	if value != "" || path == "" {
		return value, nil
	}
	return f.Fetch(ctx, path)
}

// Strings returns values when non-empty, otherwise every parameter below path.
func Strings(ctx context.Context, f Fetcher, values []string, path string) ([]string, error) {
	if len(values) > 0 || path == "" {
		return values, nil
	}
	return f.FetchAll(ctx, path)
}
