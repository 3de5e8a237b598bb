package wrapper

import (
	config "subagent-wrapper/internal/config"
	"subagent-wrapper/internal/resolver"
)

// buildResolver assembles the model resolver from the on-disk registry and
// the configured allow-list. Callers treat an empty resolver as "no registry":
// model tokens pass through to the agent CLI untouched.
func buildResolver(cfg *config.Config) *resolver.Resolver {
	mc := config.LoadModelsConfig()

	available := make([]resolver.ModelInfo, 0, len(mc.Models))
	for _, m := range mc.Models {
		available = append(available, resolver.ModelInfo{Provider: m.Provider, ID: m.ID})
	}

	enabled := cfg.EnabledModels
	if len(enabled) == 0 {
		enabled = mc.EnabledModels
	}

	return resolver.New(available, enabled)
}
