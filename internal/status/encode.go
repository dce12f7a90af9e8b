// internal/status/encode.go
package status

// HealthName renders a health code for logs.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthDegraded:
		return "degraded"
	case HealthBlind:
		return "blind"
	case HealthStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Fields flattens a Snapshot into structured log key/value pairs.
// No IO. No side effects.
func Fields(s Snapshot) []interface{} {
	kv := make([]interface{}, 0, 4+2*len(Steps)+2)
	kv = append(kv,
		"health", HealthName(s.Health),
		"threshold_stale", s.ThresholdStale,
	)
	for _, st := range Steps {
		kv = append(kv, "consecutive_"+string(st)+"_failures", s.Consecutive[st])
	}
	if s.LastError != "" {
		kv = append(kv, "last_error", s.LastError, "seconds_in_error", s.SecondsInError)
	}
	return kv
}
