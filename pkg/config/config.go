package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultPath is where the properties file is looked up when no --config flag is given.
	DefaultPath = "config/config.properties"

	// KeyDirectoryPath holds the directory scanned when the user enters no path.
	KeyDirectoryPath = "directory.path"

	// EnvDirectoryPath overrides KeyDirectoryPath.
	EnvDirectoryPath = "PHOTOINFO_DIRECTORY_PATH"
)

type Config struct {
	// DirectoryPath is the default scan target, possibly relative to the working directory.
	DirectoryPath string
}

// Load reads a key=value properties file.
//
// Values follow dotenv rules rather than Java properties escapes: backslashes
// are kept as written, $NAME expands from keys earlier in the file and a
// single-quoted value is taken literally.
//
// A value of EnvDirectoryPath in the environment wins over the file. When the
// file cannot be read the returned Config still carries the environment value,
// so callers can log the error and keep going.
func Load(path string) (Config, error) {
	var cfg Config

	values, err := godotenv.Read(path)
	if err == nil {
		cfg.DirectoryPath = strings.TrimSpace(values[KeyDirectoryPath])
	} else {
		err = fmt.Errorf("load config %s: %w", path, err)
	}

	if v, ok := os.LookupEnv(EnvDirectoryPath); ok {
		cfg.DirectoryPath = strings.TrimSpace(v)
	}
	return cfg, err
}

// ResolveDirectory returns the directory to scan for a user entry.
//
// An empty entry falls back to DirectoryPath; a relative default is resolved
// against cwd. A non-empty entry is used as given.
func (c Config) ResolveDirectory(entry, cwd string) string {
	entry = strings.TrimSpace(entry)
	if entry != "" {
		return entry
	}
	if filepath.IsAbs(c.DirectoryPath) {
		return c.DirectoryPath
	}
	return filepath.Join(cwd, c.DirectoryPath)
}
