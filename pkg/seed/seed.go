// Package seed holds the default value of every content segment.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Keys lists every content segment in load order.
var Keys = []string{
	"products", "collections", "faqs", "heroContents", "partners",
	"howWeWorkSections", "materials", "infoCards", "featuredVideoContent",
	"brandReviews", "platformRatings", "communityPosts", "pageBanners",
	"services", "capabilities", "subscriptionModalContent", "homeFeature",
}

var (
	once     sync.Once
	defaults map[string]json.RawMessage
	parseErr error
)

// Defaults returns the JSON encoding of every default segment keyed by name.
// The returned map is a copy; callers may modify it.
func Defaults() (map[string]json.RawMessage, error) {
	once.Do(func() {
		defaults, parseErr = Parse(defaultsYAML)
	})
	if parseErr != nil {
		return nil, parseErr
	}

	out := make(map[string]json.RawMessage, len(defaults))
	for k, v := range defaults {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out, nil
}

// Parse converts a YAML document of segments into JSON values. Every entry
// of Keys must be present.
func Parse(doc []byte) (map[string]json.RawMessage, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	out := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode seed segment %q: %w", key, err)
		}
		out[key] = encoded
	}

	for _, key := range Keys {
		if _, ok := out[key]; !ok {
			return nil, fmt.Errorf("seed is missing segment %q", key)
		}
	}
	return out, nil
}
