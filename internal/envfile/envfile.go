// Package envfile reads and renders dotenv files for cloud deployments.
// Rendering is deterministic so repeated runs with the same values produce
// identical files apart from the generation timestamp.
package envfile

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Parse reads a dotenv file into a map.
func Parse(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// Merge overlays updates onto base without mutating either map. Keys present
// in updates win.
func Merge(base, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(updates))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// Render produces the file contents: a generation header followed by sorted
// KEY=value lines. Values containing whitespace or quotes are double-quoted.
func Render(values map[string]string, now time.Time) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Generated by stackctl on %s\n", now.UTC().Format(time.RFC3339))
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s\n", k, quoteIfNeeded(values[k]))
	}
	return sb.String()
}

// Write renders and writes the file with owner-only permissions, since env
// files routinely carry credentials.
func Write(path string, values map[string]string, now time.Time) error {
	if err := os.WriteFile(path, []byte(Render(values, now)), 0o600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}

func quoteIfNeeded(v string) string {
	if strings.ContainsAny(v, " \t\"'#") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
