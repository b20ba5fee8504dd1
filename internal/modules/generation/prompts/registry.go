package prompts

import (
	"fmt"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[PromptName]Template{}
	registerOnce sync.Once
)

func Register(t Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name] = t
}

// Build renders the named prompt for in.
func Build(name PromptName, in Input) (string, error) {
	registerOnce.Do(RegisterAll)
	registryMu.RLock()
	t, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return "", fmt.Errorf("%s: %w", string(name), err)
		}
	}
	return t.Render(in), nil
}
