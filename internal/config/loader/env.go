package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from mapped environment variables.
type EnvLoader struct {
	mapping map[string]string // env var -> config path
	strings map[string]bool   // config paths whose values are never converted
}

// NewEnvLoader creates a loader with the default SCRIBE_ mappings.
func NewEnvLoader() *EnvLoader {
	l := NewEnvLoaderWithMapping(DefaultEnvMapping())
	l.KeepString("script.timeout")
	return l
}

// NewEnvLoaderWithMapping creates a loader with custom variable mappings.
func NewEnvLoaderWithMapping(mapping map[string]string) *EnvLoader {
	return &EnvLoader{mapping: mapping, strings: make(map[string]bool)}
}

// KeepString marks a config path whose value is always a string, so that
// SCRIBE_SCRIPT_TIMEOUT=0 stays "0" rather than becoming an integer.
func (l *EnvLoader) KeepString(path string) {
	l.strings[path] = true
}

// DefaultEnvMapping returns the environment variables scribe reads.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		"SCRIBE_LOG_LEVEL":                "logging.level",
		"SCRIBE_HISTORY_LIMIT":            "history.limit",
		"SCRIBE_MAX_LENGTH":               "document.maxLength",
		"SCRIBE_MARKDOWN_FALLBACK":        "markdown.fallback",
		"SCRIBE_SCRIPT_TIMEOUT":           "script.timeout",
		"SCRIBE_SCRIPT_MAX_CALLS":         "script.maxCalls",
	}
}

// Load reads the mapped variables that are set. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for env, path := range l.mapping {
		val, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if l.strings[path] {
			setByPath(config, path, val)
		} else {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// parseValue converts integers and true/false words; everything else
// stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
