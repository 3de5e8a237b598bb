package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ilogger "subagent-wrapper/internal/logger"

	"github.com/goccy/go-json"
)

// MaxModelsConfigBytes caps how much of models.json is read.
const MaxModelsConfigBytes = 1 << 20 // 1MB

// ModelEntry describes one model available to subagents.
type ModelEntry struct {
	Provider    string `json:"provider"`
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// ModelsConfig is the declarative model registry loaded from
// ~/.subagent/models.json. The CLI uses it in place of a host-provided model
// registry; enabled_models narrows it further.
type ModelsConfig struct {
	Models        []ModelEntry `json:"models"`
	EnabledModels []string     `json:"enabled_models,omitempty"`
}

var (
	modelsConfigMu     sync.Mutex
	modelsConfigCached *ModelsConfig
)

// LoadModelsConfig reads and caches the models registry. A missing, oversized
// or unparseable file yields an empty config, never an error.
func LoadModelsConfig() ModelsConfig {
	modelsConfigMu.Lock()
	defer modelsConfigMu.Unlock()

	if modelsConfigCached != nil {
		return *modelsConfigCached
	}

	cfg := loadModelsConfigFile()
	modelsConfigCached = &cfg
	return cfg
}

// ResetModelsConfigCacheForTest clears the cached registry.
func ResetModelsConfigCacheForTest() {
	modelsConfigMu.Lock()
	defer modelsConfigMu.Unlock()
	modelsConfigCached = nil
}

func loadModelsConfigFile() ModelsConfig {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ModelsConfig{}
	}

	path := filepath.Clean(filepath.Join(home, ".subagent", "models.json"))

	info, err := os.Stat(path)
	if err != nil || info.Size() > MaxModelsConfigBytes {
		return ModelsConfig{}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- fixed path under user home
	if err != nil {
		return ModelsConfig{}
	}

	var cfg ModelsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		ilogger.LogWarn(fmt.Sprintf("Failed to parse %s: %v", path, err))
		return ModelsConfig{}
	}

	models := cfg.Models[:0]
	for _, m := range cfg.Models {
		m.Provider = strings.TrimSpace(m.Provider)
		m.ID = strings.TrimSpace(m.ID)
		if m.Provider != "" && m.ID != "" {
			models = append(models, m)
		}
	}
	cfg.Models = models
	return cfg
}
