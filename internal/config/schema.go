package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rankingSchemaJSON bounds every ranking tunable structurally (type, range)
// before viper.Unmarshal runs. Cross-field sums (weights totalling 1.0) are
// not expressible here and are checked separately by ValidateInvariants.
const rankingSchemaJSON = `{
  "type": "object",
  "properties": {
    "ranking": {
      "type": "object",
      "properties": {
        "w_bookmark":          {"type": "number", "minimum": 1.5, "maximum": 3.0},
        "lambda_user":         {"type": "number", "minimum": 0.03, "maximum": 0.10},
        "n_max":               {"type": "integer", "minimum": 5, "maximum": 20},
        "ci_min":               {"type": "integer", "minimum": 4, "maximum": 6},
        "w_insight":           {"type": "number", "minimum": 0.4, "maximum": 0.6},
        "w_cred":              {"type": "number", "minimum": 0.4, "maximum": 0.6},
        "lambda_fresh":        {"type": "number", "minimum": 0, "maximum": 1},
        "floor_fresh":         {"type": "number", "minimum": 0, "maximum": 1},
        "w_sim":                {"type": "number", "minimum": 0, "maximum": 1},
        "w_alpha":              {"type": "number", "minimum": 0, "maximum": 1},
        "w_fresh":              {"type": "number", "minimum": 0, "maximum": 1},
        "n_candidates":        {"type": "integer", "minimum": 30, "maximum": 100},
        "series_cap":          {"type": "integer", "minimum": 1, "maximum": 3},
        "adjacency_penalty":   {"type": "number", "minimum": 0.70, "maximum": 0.90},
        "topic_threshold":     {"type": "integer", "minimum": 2, "maximum": 3},
        "topic_penalty":       {"type": "number", "minimum": 0.75, "maximum": 0.90},
        "entity_threshold":    {"type": "integer", "minimum": 2, "maximum": 4},
        "entity_penalty":      {"type": "number", "minimum": 0.60, "maximum": 0.80},
        "contrarian_boost":    {"type": "number", "minimum": 1.10, "maximum": 1.25},
        "k":                    {"type": "integer", "minimum": 1},
        "embedding_dimensions": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var rankingSchema *gojsonschema.Schema

func init() {
	loader := gojsonschema.NewStringLoader(rankingSchemaJSON)
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded ranking schema: %v", err))
	}
	rankingSchema = schema
}

// ValidateRawAgainstSchema checks the raw settings map viper has assembled
// (config file plus defaults plus env overrides) against the embedded
// ranking schema, before Unmarshal and before ValidateInvariants run.
func ValidateRawAgainstSchema(settings map[string]interface{}) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings for schema check: %w", err)
	}

	result, err := rankingSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("run schema validation: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	return nil
}
