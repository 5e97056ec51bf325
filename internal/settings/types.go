// Package settings merges the OTel environment variables Claude Code
// needs into ~/.claude/settings.json so its telemetry reaches the
// cc-scout receiver.
package settings

import "fmt"

// MergeResult classifies the outcome of a settings merge.
type MergeResult int

const (
	MergeSuccess MergeResult = iota
	MergeAlreadyConfigured
	MergeNeedsConfirmation
	MergeError
)

// MergeOptions controls how the merge runs.
type MergeOptions struct {
	// SettingsPath overrides the default ~/.claude/settings.json.
	SettingsPath string

	// GRPCPort is the receiver port the OTLP endpoint should point at.
	// Zero means the default 4317.
	GRPCPort int

	// Interactive makes conflicting values return MergeNeedsConfirmation
	// instead of being skipped with a warning.
	Interactive bool

	// FixPortOnly restricts the merge to the OTLP endpoint variable and
	// overwrites it unconditionally.
	FixPortOnly bool
}

// MergeOutput reports what the merge did.
type MergeOutput struct {
	Result   MergeResult
	Messages []string
	Warnings []string
	Err      error
}

// RequiredOTelEnv returns the environment variables Claude Code needs
// to export telemetry to a local OTLP receiver on the given gRPC port.
func RequiredOTelEnv(grpcPort int) map[string]string {
	return map[string]string{
		"CLAUDE_CODE_ENABLE_TELEMETRY": "1",
		"OTEL_LOGS_EXPORTER":           "otlp",
		"OTEL_METRICS_EXPORTER":        "otlp",
		"OTEL_EXPORTER_OTLP_PROTOCOL":  "grpc",
		"OTEL_EXPORTER_OTLP_ENDPOINT":  fmt.Sprintf("http://localhost:%d", grpcPort),
	}
}
