package logger

import "time"

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldStep      = "step"
	FieldStage     = "stage"
	FieldMode      = "mode"
	FieldItems     = "items"
	FieldRun       = "run_id"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map[string]any from alternating key-value pairs.
//
//	logger.Info("stage done", logger.Fields("step", "convert", "items", 42))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a step that failed.
func ErrorFields(step string, err error) map[string]any {
	return map[string]any{
		FieldStep:  step,
		FieldError: err.Error(),
	}
}

// DurationFields creates fields for a timed step.
func DurationFields(step string, d time.Duration) map[string]any {
	return map[string]any{
		FieldStep:     step,
		FieldDuration: d.Milliseconds(),
	}
}
