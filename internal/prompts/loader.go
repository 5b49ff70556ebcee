// Package prompts holds the embedded LLM prompt templates for keyword extraction.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// Set is one prompt file: template key to template text.
type Set map[string]string

var (
	mu     sync.Mutex
	loaded = map[string]Set{}
)

// placeholder matches {{.Name}} slots.
var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// Load parses an embedded prompt file once and returns it.
func Load(filename string) (Set, error) {
	mu.Lock()
	defer mu.Unlock()

	if set, ok := loaded[filename]; ok {
		return set, nil
	}
	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	loaded[filename] = set
	return set, nil
}

// Render fills the template stored under key. Every slot must have a value;
// values are inserted verbatim.
func (s Set) Render(key string, vars map[string]string) (string, error) {
	tmpl, ok := s[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}

	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(slot string) string {
		name := placeholder.FindStringSubmatch(slot)[1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return slot
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q: no value for %s", key, strings.Join(missing, ", "))
	}
	return out, nil
}

// Keys lists the template keys in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render loads filename and renders key.
func Render(filename, key string, vars map[string]string) (string, error) {
	set, err := Load(filename)
	if err != nil {
		return "", err
	}
	return set.Render(key, vars)
}
