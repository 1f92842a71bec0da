package document

import (
	"os"

	"github.com/limetext/loaders"
)

// Settings is a parent-chained key/value store for per-document knobs
// (default_line_ending, trim_trailing_white_space_on_save, and so on),
// modeled on view.go's loadSettings defaultSettings <- platformSettings
// <- userSettings <- buffer chain: a lookup that misses locally falls
// through to the parent instead of failing.
type Settings struct {
	parent *Settings
	values map[string]interface{}
}

// NewSettings returns an empty Settings layer chained to parent (nil for
// a root layer).
func NewSettings(parent *Settings) *Settings {
	return &Settings{parent: parent, values: make(map[string]interface{})}
}

// Get returns the raw value for key, searching this layer then its
// parent chain. ok is false if no layer defines key.
func (s *Settings) Get(key string) (interface{}, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set assigns key in this layer only.
func (s *Settings) Set(key string, value interface{}) { s.values[key] = value }

// Has reports whether key is defined anywhere in the chain.
func (s *Settings) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// String returns key's value as a string, or def if unset or of another
// type.
func (s *Settings) String(key, def string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// Bool returns key's value as a bool, or def if unset or of another type.
func (s *Settings) Bool(key string, def bool) bool {
	if v, ok := s.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns key's value as an int, or def if unset or of another type.
func (s *Settings) Int(key string, def int) int {
	if v, ok := s.Get(key); ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

// LoadJSON reads path into this settings layer, the same way
// LanguageFromFile reads a file before handing its bytes to the loaders
// package. Returns the read error if path does not exist.
func (s *Settings) LoadJSON(path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return loaders.LoadJSON(d, &s.values)
}
