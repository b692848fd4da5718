package service

import (
	"sync"

	"edu_content_backend/internal/config"
	"edu_content_backend/pkg/logger"

	"go.uber.org/zap"
)

// PromptProvider holds the current prompt-template set and swaps it
// atomically when the file-watcher reports a change.
type PromptProvider struct {
	mu      sync.RWMutex
	set     *config.PromptSet
	version string
}

func NewPromptProvider(set *config.PromptSet, version string) *PromptProvider {
	return &PromptProvider{set: set, version: version}
}

func (p *PromptProvider) Active() (config.PromptTemplate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set.Version(p.version)
}

// Reload re-reads the prompt file; a broken file keeps the previous set.
func (p *PromptProvider) Reload(path string) {
	set, err := config.LoadPrompts(path)
	if err != nil {
		logger.Log.Error("Failed to reload prompts, keeping previous set",
			zap.String("path", path), zap.Error(err))
		return
	}

	p.mu.Lock()
	p.set = set
	p.mu.Unlock()

	logger.Log.Info("Prompt templates reloaded", zap.String("path", path))
}
