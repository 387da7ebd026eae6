package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Parameters collects container parameters from env files and the process
// environment. Only keys starting with prefix are kept; the prefix is
// stripped and the rest lowercased, so with prefix "PARAM_" the variable
// PARAM_GREETING becomes the parameter "greeting".
//
// Process environment variables override values read from the files. Every
// listed file must exist.
func Parameters(prefix string, envFiles ...string) (map[string]any, error) {
	vars := map[string]string{}
	if len(envFiles) > 0 {
		fromFiles, err := godotenv.Read(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("config: read env files: %w", err)
		}
		vars = fromFiles
	}

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[key] = value
	}

	params := make(map[string]any)
	for key, value := range vars {
		if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		params[strings.ToLower(strings.TrimPrefix(key, prefix))] = value
	}
	return params, nil
}
