package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// SeedIfMissing copies a bundled default document into dataPath, verbatim,
// when no document has been persisted yet. It runs before the store's first
// Load; failure is non-fatal and falls through to the store's own default
// initialization.
//
// The seed is looked up at $CURATOR_SEED, then default-data.json next to the
// executable.
func SeedIfMissing(dataPath string, log zerolog.Logger) {
	if _, err := os.Stat(dataPath); err == nil {
		return
	}

	seed := findSeed()
	if seed == "" {
		return
	}
	if err := copyFile(seed, dataPath); err != nil {
		log.Warn().Err(err).Str("seed", seed).Msg("failed to seed default data")
		return
	}
	log.Info().Str("seed", seed).Msg("initialized with default data")
}

func findSeed() string {
	if v := strings.TrimSpace(os.Getenv("CURATOR_SEED")); v != "" {
		if _, err := os.Stat(v); err == nil {
			return v
		}
		return ""
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(exe), "default-data.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
