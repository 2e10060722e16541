package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Compile.FPVariant != "VFP" {
		t.Errorf("Expected FPVariant=VFP, got %s", cfg.Compile.FPVariant)
	}
	if cfg.Compile.EntryAddress != 0x8000 {
		t.Errorf("Expected EntryAddress=0x8000, got %#x", cfg.Compile.EntryAddress)
	}
	if cfg.Compile.GlobalsSize != 4096 {
		t.Errorf("Expected GlobalsSize=4096, got %d", cfg.Compile.GlobalsSize)
	}
	if cfg.Compile.HeapGuardSize != 8192 {
		t.Errorf("Expected HeapGuardSize=8192, got %d", cfg.Compile.HeapGuardSize)
	}
	if !cfg.Compile.HandleEscapes {
		t.Error("Expected HandleEscapes=true")
	}

	if !cfg.Encoder.RoundImmediates {
		t.Error("Expected RoundImmediates=true")
	}
	if cfg.Encoder.MaxConstantPoolDistance != 4096 {
		t.Errorf("Expected MaxConstantPoolDistance=4096, got %d", cfg.Encoder.MaxConstantPoolDistance)
	}

	if cfg.Output.LoadAddress != "0x8000" {
		t.Errorf("Expected LoadAddress=0x8000, got %s", cfg.Output.LoadAddress)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}

	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}

	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "subtilis-armback" && path != "config.toml" {
			t.Errorf("Expected path in subtilis-armback directory or fallback, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Compile.FPVariant = "FPA"
	cfg.Compile.HandleEscapes = false
	cfg.Compile.EntryAddress = 0x10000
	cfg.Encoder.RoundImmediates = false
	cfg.Output.LoadAddress = "0x10000"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Compile.FPVariant != "FPA" {
		t.Errorf("Expected FPVariant=FPA, got %s", loaded.Compile.FPVariant)
	}
	if loaded.Compile.HandleEscapes {
		t.Error("Expected HandleEscapes=false")
	}
	if loaded.Compile.EntryAddress != 0x10000 {
		t.Errorf("Expected EntryAddress=0x10000, got %#x", loaded.Compile.EntryAddress)
	}
	if loaded.Encoder.RoundImmediates {
		t.Error("Expected RoundImmediates=false")
	}
	if loaded.Output.LoadAddress != "0x10000" {
		t.Errorf("Expected LoadAddress=0x10000, got %s", loaded.Output.LoadAddress)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Compile.EntryAddress != 0x8000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[compile]
entry_address = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
