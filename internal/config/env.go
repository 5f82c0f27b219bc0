package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

var errNoEnvFile = errors.New("no .env file found")

// loadEnvFile loads KEY=VALUE pairs from .env or .env.local next to the
// configuration file. The first file that parses wins; variables already
// present in the process environment are never overwritten.
func loadEnvFile(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", "path", path)
			return nil
		}
	}
	return errNoEnvFile
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv substitutes ${NAME} references from the environment. Any other
// "$" is literal text.
func expandEnv(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}
