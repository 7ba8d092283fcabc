// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from the environment (including a .env
// file when present) and from a directory of plain-text files. Each file
// in the directory represents one secret: the filename is the key name and
// the file contents (trimmed) are the value. Directory values take
// precedence over environment values.
//
// Supported key files: semantic-scholar-api-key, anthropic-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Keys holds the credentials the pipeline knows how to use. Empty fields
// mean the corresponding service runs unauthenticated or is unavailable.
type Keys struct {
	SemanticScholar string
	Anthropic       string
	OpenAI          string
}

// envNames maps a secret file name to its environment variable fallback.
var envNames = map[string]string{
	"semantic-scholar-api-key": "SEMANTIC_SCHOLAR_API_KEY",
	"anthropic-api-key":        "ANTHROPIC_API_KEY",
	"openai-api-key":           "OPENAI_API_KEY",
}

// Load resolves all known keys. It first loads .env into the process
// environment (a missing .env is not an error), then overlays values from
// files in dir. A missing directory or missing files are not errors.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Keys, error) {
	godotenv.Load()

	values := make(map[string]string, len(envNames))
	for file, env := range envNames {
		values[file] = strings.TrimSpace(os.Getenv(env))
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return Keys{}, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, known := values[entry.Name()]; !known {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			values[entry.Name()] = v
		}
	}

	return Keys{
		SemanticScholar: values["semantic-scholar-api-key"],
		Anthropic:       values["anthropic-api-key"],
		OpenAI:          values["openai-api-key"],
	}, nil
}
