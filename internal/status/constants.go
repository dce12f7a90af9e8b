// internal/status/constants.go
package status

// ---- STEPS ----

// Step names one fallible stage of a control cycle.
type Step string

const (
	StepFetch     Step = "fetch"
	StepSensor    Step = "sensor"
	StepTelemetry Step = "telemetry"
)

// Steps lists the tracked steps in cycle order.
var Steps = []Step{StepFetch, StepSensor, StepTelemetry}

// ---- HEALTH CODES ----

// HealthUnknown is the boot state, before any cycle completed.
const HealthUnknown uint16 = 0

// HealthOK means the last cycle had no failed step.
const HealthOK uint16 = 1

// HealthDegraded means fetch or telemetry is failing; actuation still runs.
const HealthDegraded uint16 = 2

// HealthBlind means the sensor is failing, so no actuation decision is made.
const HealthBlind uint16 = 3

// HealthStale is degraded with the threshold not refreshed for StaleAfter cycles.
const HealthStale uint16 = 4

// StaleAfter is the number of consecutive failed fetches after which the
// threshold in use is reported stale.
const StaleAfter = 3
