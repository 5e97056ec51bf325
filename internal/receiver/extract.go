package receiver

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nixlim/cc-scout/internal/detector"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

// toolResultEvent is the only log record the detector consumes. Other
// claude_code.* events (prompts, api requests, decisions) are logged in
// debug mode and dropped.
const toolResultEvent = "claude_code.tool_result"

// Observation is one tool call extracted from an OTLP log record,
// ready to feed the session registry.
type Observation struct {
	SessionID string
	ToolName  string
	Args      map[string]string
	Result    detector.Result
	Timestamp time.Time
}

// extractObservations walks an OTLP logs export request and returns the
// tool-result observations it contains. Resource-level session.id is
// inherited by every record under that resource.
func extractObservations(req *collogspb.ExportLogsServiceRequest) []Observation {
	var out []Observation
	for _, rl := range req.GetResourceLogs() {
		sessionID := resourceSessionID(rl.GetResource().GetAttributes())
		for _, sl := range rl.GetScopeLogs() {
			for _, lr := range sl.GetLogRecords() {
				if lr.GetEventName() != toolResultEvent {
					continue
				}
				attrs := attrMap(lr.GetAttributes())
				obs := Observation{
					SessionID: sessionID,
					ToolName:  attrs["tool_name"],
					Args:      parseToolParameters(attrs["tool_parameters"]),
					Result:    parseResult(attrs),
				}
				if ts := lr.GetTimeUnixNano(); ts > 0 {
					obs.Timestamp = time.Unix(0, int64(ts))
				}
				out = append(out, obs)
			}
		}
	}
	return out
}

// resourceSessionID finds the session.id resource attribute, or "".
func resourceSessionID(attrs []*commonpb.KeyValue) string {
	for _, kv := range attrs {
		if kv.GetKey() == "session.id" {
			return kv.GetValue().GetStringValue()
		}
	}
	return ""
}

// attrMap flattens OTLP attributes to a string map. Non-string values
// are rendered with their decimal representation.
func attrMap(attrs []*commonpb.KeyValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		m[kv.GetKey()] = anyValueString(kv.GetValue())
	}
	return m
}

func anyValueString(v *commonpb.AnyValue) string {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10)
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64)
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue)
	default:
		return ""
	}
}

// parseToolParameters decodes the tool_parameters JSON attribute into a
// flat string map. Nested or non-scalar values are dropped; a decode
// failure yields nil rather than an error since the record is still
// worth counting.
func parseToolParameters(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseResult maps result attributes onto the detector's result union:
// result_count becomes an item sequence, result becomes raw text, and
// records carrying neither are treated as having no result.
func parseResult(attrs map[string]string) detector.Result {
	if countStr, ok := attrs["result_count"]; ok {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return detector.NoResult()
		}
		return detector.ItemsResult(n)
	}
	if text, ok := attrs["result"]; ok {
		return detector.TextResult(text)
	}
	return detector.NoResult()
}

// portError formats the bind failure message shared by both receivers.
func portError(port int) error {
	return fmt.Errorf("port %d already in use", port)
}
