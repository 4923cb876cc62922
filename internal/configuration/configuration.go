// Package configuration loads the gemchat config file, materializing a
// default one on first run, and resolves the Gemini API credential
// from the environment.
package configuration

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// MaxRequestBytes caps an outbound request (prompt text plus the one
// forwarded file). Requests over the cap are rejected before dispatch,
// never truncated.
const MaxRequestBytes = 10 << 20

var defaultConfig = Config{
	Model:          "gemini-2.5-flash",
	RequestTimeout: 120,
	MaxRequestBytes: MaxRequestBytes,

	Webserver: &WebserverConfig{
		Port: 3030,
	},
}

// Config holds configuration for the gemchat tool.
type Config struct {
	// The credential for the generation collaborator. Populated from
	// the GEMINI_API_KEY environment variable, never from the file.
	GeminiAPIKey string `json:"-"`
	// The model used for all generation calls.
	Model string `json:"model"`
	// Per-request timeout, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// Maximum request size, in bytes.
	MaxRequestBytes int64 `json:"max_request_bytes"`

	Webserver *WebserverConfig `json:"webserver"`
}

// WebserverConfig holds configuration for the web surface.
type WebserverConfig struct {
	Port int `json:"port"`
}

// Parse a configuration file and resolve the API credential. A `.env`
// file in the working directory is honored before the environment is
// read.
func Parse(path string) (*Config, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if config.Model == "" {
		config.Model = defaultConfig.Model
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaultConfig.RequestTimeout
	}
	if config.MaxRequestBytes == 0 {
		config.MaxRequestBytes = defaultConfig.MaxRequestBytes
	}
	if config.Webserver == nil {
		config.Webserver = defaultConfig.Webserver
	}

	// Missing .env is fine; the variable may be exported directly.
	_ = godotenv.Load()
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "getting current user")
	}
	return filepath.Join(usr.HomeDir, path[1:]), nil
}
