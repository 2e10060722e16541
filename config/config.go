// Package config persists compiler settings to and from a TOML file,
// following the teacher emulator's own default-then-override config
// pattern (spec.md's ambient stack).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the compiler driver needs, plus the two
// concerns spec.md's compiler Settings doesn't itself cover: how the
// encoder rounds immediates, and where the final image is written.
type Config struct {
	// Compile settings
	Compile struct {
		HandleEscapes        bool   `toml:"handle_escapes"`
		IgnoreGraphicsErrors bool   `toml:"ignore_graphics_errors"`
		CheckMemLeaks        bool   `toml:"check_mem_leaks"`
		FPVariant            string `toml:"fp_variant"` // FPA or VFP
		EntryAddress         uint32 `toml:"entry_address"`
		GlobalsSize          uint32 `toml:"globals_size"`
		HeapGuardSize        uint32 `toml:"heap_guard_size"`
	} `toml:"compile"`

	// Encoder settings
	Encoder struct {
		RoundImmediates         bool `toml:"round_immediates"`
		MaxConstantPoolDistance int  `toml:"max_constant_pool_distance"`
	} `toml:"encoder"`

	// Output settings
	Output struct {
		LoadAddress      string `toml:"load_address"`
		ExecutableSuffix string `toml:"executable_suffix"`
	} `toml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compile.HandleEscapes = true
	cfg.Compile.IgnoreGraphicsErrors = false
	cfg.Compile.CheckMemLeaks = false
	cfg.Compile.FPVariant = "VFP"
	cfg.Compile.EntryAddress = 0x8000
	cfg.Compile.GlobalsSize = 4096
	cfg.Compile.HeapGuardSize = 8192

	cfg.Encoder.RoundImmediates = true
	cfg.Encoder.MaxConstantPoolDistance = 4096

	cfg.Output.LoadAddress = "0x8000"
	cfg.Output.ExecutableSuffix = ""

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\subtilis-armback\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "subtilis-armback")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/subtilis-armback/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "subtilis-armback")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
