package services

import (
	"encoding/json"
	"strings"

	"github.com/aivanb/LifestyleApp/config"
)

// metadataWhitelist is the fixed set of keys a Food row may ever be built
// from. Anything else coming back from the completion API (or the caller)
// is dropped at the boundary.
var metadataWhitelist = map[string]struct{}{
	"serving_size":  {},
	"unit":          {},
	"calories":      {},
	"protein":       {},
	"fat":           {},
	"carbohydrates": {},
	"fiber":         {},
	"sodium":        {},
	"sugar":         {},
	"saturated_fat": {},
	"trans_fat":     {},
	"calcium":       {},
	"iron":          {},
	"magnesium":     {},
	"cholesterol":   {},
	"vitamin_a":     {},
	"vitamin_c":     {},
	"vitamin_d":     {},
	"caffeine":      {},
	"food_group":    {},
	"brand":         {},
	"cost":          {},
}

func defaultMetadata() map[string]interface{} {
	return map[string]interface{}{
		"serving_size":  100.0,
		"unit":          "g",
		"calories":      0.0,
		"protein":       0.0,
		"fat":           0.0,
		"carbohydrates": 0.0,
		"fiber":         0.0,
		"sodium":        0.0,
		"sugar":         0.0,
		"saturated_fat": 0.0,
		"trans_fat":     0.0,
		"calcium":       0.0,
		"iron":          0.0,
		"magnesium":     0.0,
		"cholesterol":   0.0,
		"vitamin_a":     0.0,
		"vitamin_c":     0.0,
		"vitamin_d":     0.0,
		"caffeine":      0.0,
		"food_group":    "other",
		"brand":         "",
		"cost":          nil,
	}
}

// filterMetadata returns a copy of md holding only whitelisted keys.
func filterMetadata(md map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(md))
	for k, v := range md {
		if _, ok := metadataWhitelist[k]; ok {
			out[k] = v
		}
	}
	return out
}

// stripCodeFences unwraps a markdown-fenced block if the model ignored
// the raw-JSON instruction.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	var kept []string
	inBlock := false
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(line, "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// MetadataSynthesizer fills in the nutrient fields a caller did not
// supply, via one completion call. On any gateway or parse failure it
// degrades to defaults overlaid with the caller's values; it never makes
// a second attempt.
type MetadataSynthesizer struct {
	gateway PromptSender
}

func NewMetadataSynthesizer(gateway PromptSender) *MetadataSynthesizer {
	return &MetadataSynthesizer{gateway: gateway}
}

// Generate returns a map covering exactly the whitelist keys. Merge
// precedence, lowest to highest: defaults, generated values, caller
// metadata.
func (m *MetadataSynthesizer) Generate(userID uint, foodName string, existing map[string]interface{}) map[string]interface{} {
	filtered := filterMetadata(existing)

	res := m.gateway.SendPrompt(userID, buildMetadataPrompt(foodName, filtered))
	if !res.Success {
		config.GetLogger().WithField("error", res.Error).Error("metadata generation failed")
		return mergeWithDefaults(filtered)
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(stripCodeFences(res.Response)), &parsed); err != nil {
		config.GetLogger().WithField("error", err.Error()).Error("failed to parse metadata JSON")
		return mergeWithDefaults(filtered)
	}

	// Some models wrap the object in a one-element array.
	if list, ok := parsed.([]interface{}); ok {
		if len(list) == 0 {
			return mergeWithDefaults(filtered)
		}
		parsed = list[0]
	}
	generated, ok := parsed.(map[string]interface{})
	if !ok {
		config.GetLogger().Error("metadata response is neither object nor list")
		return mergeWithDefaults(filtered)
	}

	complete := filterMetadata(generated)
	for k, v := range filtered {
		complete[k] = v
	}
	return ensureCompleteMetadata(complete)
}

// mergeWithDefaults is the degraded path: defaults plus whatever the
// caller pinned.
func mergeWithDefaults(filtered map[string]interface{}) map[string]interface{} {
	out := defaultMetadata()
	for k, v := range filtered {
		out[k] = v
	}
	return out
}

// ensureCompleteMetadata drops non-whitelist keys and fills gaps (or
// explicit nulls) with defaults. The cost key stays nullable.
func ensureCompleteMetadata(md map[string]interface{}) map[string]interface{} {
	defaults := defaultMetadata()
	out := make(map[string]interface{}, len(defaults))
	for k, v := range md {
		if _, ok := metadataWhitelist[k]; ok {
			out[k] = v
		}
	}
	for k, def := range defaults {
		if v, ok := out[k]; !ok || (v == nil && k != "cost") {
			out[k] = def
		}
	}
	return out
}
