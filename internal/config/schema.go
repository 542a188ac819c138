package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const simulationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["persona", "tick_minutes", "max_days", "stuck_ticks", "interval_ms", "speed"],
  "properties": {
    "persona": {"enum": ["speedrunner", "casual", "weekend_warrior"]},
    "tick_minutes": {"type": "integer", "minimum": 1, "maximum": 1440},
    "max_days": {"type": "integer", "minimum": 1, "maximum": 3650},
    "stuck_ticks": {"type": "integer", "minimum": 1},
    "interval_ms": {"type": "integer", "minimum": 1},
    "speed": {"type": "number", "exclusiveMinimum": 0, "maximum": 1000},
    "roll_ttl_minutes": {"type": "integer", "minimum": 0},
    "victory": {
      "type": ["array", "null"],
      "items": {"type": "string", "minLength": 1}
    },
    "auto_start": {"type": "boolean"},
    "resume": {"type": "boolean"},
    "thresholds": {
      "type": "object",
      "properties": {
        "min_severity": {"type": "number", "minimum": 0, "maximum": 1},
        "water_per_plot": {"type": "number", "exclusiveMinimum": 0}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("simulation.schema.json", strings.NewReader(simulationSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("simulation.schema.json")
	})
	return schema, schemaErr
}

func validateSimulation(s Simulation) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile simulation schema: %w", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: simulation: %v", ErrInvalid, err)
	}
	return nil
}
