package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Layout: []string{
			"######",
			"#@$ .#",
			"#    #",
			"######",
		},
		UndoCapacity: 5,
		Messages: engine.LevelMessages{
			Welcome: "Welcome!",
			Solved:  "Solved!",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.LevelConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

const yamlLevel = `name: Yaml Level
description: Loaded from YAML
undo_capacity: 2
layout:
  - "#####"
  - "#@$.#"
  - "#####"
messages:
  welcome: Hello from yaml
  solved: Done
`

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		// Create default config
		defaultConfig := createValidConfig()
		defaultConfig.Name = "Classic"
		writeConfigFile(t, dir, "classic", defaultConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "classic" {
			t.Errorf("Expected default id 'classic', got '%s'", manager.DefaultID())
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("first available level becomes default", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		other := createValidConfig()
		other.Name = "Beta"
		writeConfigFile(t, dir, "beta", other)
		other.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultID() != "alpha" || manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected alpha as default, got %s", manager.DefaultID())
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Errorf("NewManager should succeed even without config files, got error: %v", err)
		}
		if manager == nil {
			t.Fatal("Expected manager to be created")
		}

		// Should fall back to the built-in level
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil || defaultConfig.Name != "Classic" {
			t.Errorf("Expected built-in default config, got %+v", defaultConfig)
		}
		if manager.DefaultID() != "default" {
			t.Errorf("Expected default id 'default', got '%s'", manager.DefaultID())
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	defaultConfig.Name = "Classic"
	writeConfigFile(t, dir, "classic", defaultConfig)

	easyConfig := createValidConfig()
	easyConfig.Name = "Easy"
	easyConfig.UndoCapacity = 20
	writeConfigFile(t, dir, "easy", easyConfig)

	if err := os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(yamlLevel), 0644); err != nil {
		t.Fatalf("Failed to write yaml level: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
		if config.UndoCapacity != 20 {
			t.Errorf("Expected undo capacity 20, got %d", config.UndoCapacity)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("load yaml level", func(t *testing.T) {
		config, err := manager.LoadConfig("tiny")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.Name != "Yaml Level" || config.UndoCapacity != 2 {
			t.Errorf("Unexpected yaml config %+v", config)
		}
		if len(config.Layout) != 3 || config.Layout[1] != "#@$.#" {
			t.Errorf("Unexpected yaml layout %q", config.Layout)
		}
		if config.Messages.Welcome != "Hello from yaml" {
			t.Errorf("Unexpected welcome %q", config.Messages.Welcome)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("easy")

		// Second load should come from cache
		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Errorf("Expected service.ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../classic")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`) // Missing required fields
		err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644)
		if err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err = manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load unbalanced level", func(t *testing.T) {
		config := createValidConfig()
		config.Layout[2] = "#  $ #"
		writeConfigFile(t, dir, "unbalanced", config)

		_, err := manager.LoadConfig("unbalanced")
		if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, engine.ErrStructuralViolation) {
			t.Errorf("Expected structural violation, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644)
		if err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err = manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	defaultConfig.Name = "Default Config"
	writeConfigFile(t, dir, "classic", defaultConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := manager.GetDefault()
	if config == nil {
		t.Fatal("Expected default config to be non-nil")
	}
	if config.Name != "Default Config" {
		t.Errorf("Expected default config name 'Default Config', got '%s'", config.Name)
	}

	other := createValidConfig()
	other.Name = "Other"
	writeConfigFile(t, dir, "other", other)
	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Other" || manager.DefaultID() != "other" {
		t.Errorf("Expected 'other' as default, got %s", manager.DefaultID())
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	configs := []struct {
		filename string
		name     string
	}{
		{"classic", "Classic"},
		{"easy", "Easy"},
		{"medium", "Medium"},
		{"hard", "Hard"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Non-level files and broken levels are skipped
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)
	os.WriteFile(filepath.Join(dir, "tiny.yml"), []byte(yamlLevel), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 5 {
		t.Fatalf("Expected 5 configs, got %d", len(configList))
	}

	foundConfigs := make(map[string]*struct{ rows, cols, baggage int })
	for _, info := range configList {
		foundConfigs[info.Name] = &struct{ rows, cols, baggage int }{info.Rows, info.Cols, info.Baggage}
	}

	for _, cfg := range configs {
		if foundConfigs[cfg.name] == nil {
			t.Errorf("Config '%s' not found in list", cfg.name)
		}
	}
	if dims := foundConfigs["Classic"]; dims != nil && (dims.rows != 4 || dims.cols != 6 || dims.baggage != 1) {
		t.Errorf("Unexpected classic dimensions %+v", *dims)
	}

	// Sorted by identifier
	if configList[0].ConfigID != "classic" || configList[4].ConfigID != "tiny" {
		t.Errorf("Expected sorted ids, got %s..%s", configList[0].ConfigID, configList[4].ConfigID)
	}
	if configList[4].Filename != "tiny.yml" {
		t.Errorf("Expected tiny.yml filename, got %s", configList[4].Filename)
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	config := createValidConfig()
	config.Name = "Changeable"
	config.UndoCapacity = 10
	writeConfigFile(t, dir, "classic", config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.UndoCapacity != 10 {
		t.Errorf("Expected initial undo capacity 10, got %d", loaded.UndoCapacity)
	}

	// Modify config file
	config.UndoCapacity = 20
	writeConfigFile(t, dir, "changeable", config)

	err = manager.ReloadConfig("changeable")
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.UndoCapacity != 20 {
		t.Errorf("Expected reloaded undo capacity 20, got %d", reloaded.UndoCapacity)
	}

	// RefreshCache also picks up disk changes
	config.UndoCapacity = 30
	writeConfigFile(t, dir, "changeable", config)
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	refreshed, _ := manager.LoadConfig("changeable")
	if refreshed.UndoCapacity != 30 {
		t.Errorf("Expected refreshed undo capacity 30, got %d", refreshed.UndoCapacity)
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*engine.LevelConfig)
		valid  bool
	}{
		{"valid config", func(*engine.LevelConfig) {}, true},
		{"missing name", func(c *engine.LevelConfig) { c.Name = "" }, false},
		{"undo capacity too large", func(c *engine.LevelConfig) { c.UndoCapacity = engine.MaxUndoCapacity + 1 }, false},
		{"no baggage", func(c *engine.LevelConfig) { c.Layout = []string{"####", "#@.#", "####"} }, false},
		{"invalid character", func(c *engine.LevelConfig) { c.Layout[2] = "#  x #" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := manager.ValidateConfig(config)
			if tt.valid && err != nil {
				t.Errorf("Expected valid config to pass validation: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	if err := manager.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	loaded, err := manager.LoadConfig("saved")
	if err != nil || loaded.Name != "Saved" {
		t.Errorf("Expected saved config to load, got %v / %v", loaded, err)
	}

	bad := createValidConfig()
	bad.Layout = []string{"#@$$.#"}
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad name, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for _, name := range []string{"classic", "one", "two", "three"} {
		config := createValidConfig()
		config.Name = name
		writeConfigFile(t, dir, name, config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names := []string{"one", "two", "three"}
			if _, err := manager.LoadConfig(names[i%3]); err != nil {
				errs <- err
			}
			if i%10 == 0 {
				if _, err := manager.ListConfigs(); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "level.json", createValidConfig())
	if err := os.WriteFile(filepath.Join(dir, "level.yaml"), []byte(yamlLevel), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := ReadFile(filepath.Join(dir, "level.json"))
	if err != nil || config.Name != "Test Config" {
		t.Errorf("Expected json level, got %v, %v", config, err)
	}

	config, err = ReadFile(filepath.Join(dir, "level.yaml"))
	if err != nil || config.Name != "Yaml Level" {
		t.Errorf("Expected yaml level, got %v, %v", config, err)
	}

	if _, err := ReadFile(filepath.Join(dir, "broken.yml")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for malformed yaml, got %v", err)
	}
	if _, err := ReadFile(filepath.Join(dir, "notes.txt")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown extension, got %v", err)
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
