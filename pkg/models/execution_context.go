package models

import "sync"

// ExecutionContext is the mutable aggregate of a single flow run. Results are
// append-only; appends are serialized so workers of one parallel group may
// add results concurrently.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id"`
	FlowName    FlowName       `json:"flow_name"`
	RequestData map[string]any `json:"request_data,omitempty"`

	mu      sync.Mutex
	results []StepResult
}

func NewExecutionContext(executionID, userID, sessionID string, flowName FlowName, requestData map[string]any) *ExecutionContext {
	if requestData == nil {
		requestData = make(map[string]any)
	}

	return &ExecutionContext{
		ExecutionID: executionID,
		UserID:      userID,
		SessionID:   sessionID,
		FlowName:    flowName,
		RequestData: requestData,
	}
}

func (c *ExecutionContext) AddResult(result StepResult) {
	c.mu.Lock()
	c.results = append(c.results, result)
	c.mu.Unlock()
}

// Results returns a copy of the accumulated results in append order.
func (c *ExecutionContext) Results() []StepResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]StepResult, len(c.results))
	copy(out, c.results)

	return out
}

func (c *ExecutionContext) SuccessfulSteps() []string {
	var names []string

	for _, r := range c.Results() {
		if r.Status == StepStatusSuccess {
			names = append(names, r.StepName)
		}
	}

	return names
}

func (c *ExecutionContext) HasCriticalErrors() bool {
	for _, r := range c.Results() {
		if r.IsCritical() {
			return true
		}
	}

	return false
}

// Param returns a request parameter and whether it is present and non-nil.
func (c *ExecutionContext) Param(key string) (any, bool) {
	return Lookup(c.RequestData, key)
}

// StringParam returns the parameter as a string, or "" when absent or not a string.
func (c *ExecutionContext) StringParam(key string) string {
	v, _ := c.Param(key)
	s, _ := v.(string)

	return s
}

// Lookup returns params[key] if it is present and non-nil.
func Lookup(params map[string]any, key string) (any, bool) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

// Truthy reports whether params[key] holds a value that is not nil, false,
// zero or empty.
func Truthy(params map[string]any, key string) bool {
	v, ok := Lookup(params, key)
	if !ok {
		return false
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// BoolParam returns def when key is absent. A present key, explicit null
// included, is read with Truthy.
func BoolParam(params map[string]any, key string, def bool) bool {
	if _, present := params[key]; !present {
		return def
	}

	return Truthy(params, key)
}

func (c *ExecutionContext) HasParam(key string) bool {
	_, ok := c.Param(key)

	return ok
}
