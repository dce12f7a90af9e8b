// internal/controller/controller.go
package controller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bernardothives/projeto-final-dsme/internal/actuator"
	"github.com/bernardothives/projeto-final-dsme/internal/metrics"
	"github.com/bernardothives/projeto-final-dsme/internal/mirror"
	"github.com/bernardothives/projeto-final-dsme/internal/sensor"
	"github.com/bernardothives/projeto-final-dsme/internal/status"
)

// Config is the minimal runtime config the controller needs.
type Config struct {
	Device             string
	Interval           time.Duration
	Pulse              time.Duration
	SensorTimeout      time.Duration
	DefaultThresholdCm int
}

// Deps are the collaborators of one controller. Mirror, Metrics and Log are optional.
type Deps struct {
	Remote   Remote
	Sensor   sensor.Sensor
	Actuator actuator.Actuator
	Mirror   Mirror
	Metrics  *metrics.Metrics
	Log      *zap.SugaredLogger
}

// Controller runs the fetch, measure, post, actuate sequence.
// Cycles never overlap; the threshold is owned here and nowhere else.
type Controller struct {
	cfg  Config
	deps Deps
	log  *zap.SugaredLogger

	health *status.Tracker

	threshold int
	seq       uint64

	// sleep blocks for the actuator hold.
	sleep func(time.Duration)
	// wait blocks between cycles; false means ctx ended.
	wait func(ctx context.Context, d time.Duration) bool
}

// New creates a controller with immutable config.
func New(cfg Config, deps Deps) (*Controller, error) {
	if deps.Remote == nil {
		return nil, errors.New("controller: remote required")
	}
	if deps.Sensor == nil {
		return nil, errors.New("controller: sensor required")
	}
	if deps.Actuator == nil {
		return nil, errors.New("controller: actuator required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("controller: interval must be > 0")
	}
	if cfg.DefaultThresholdCm < 0 {
		return nil, errors.New("controller: default threshold must be >= 0")
	}

	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Controller{
		cfg:       cfg,
		deps:      deps,
		log:       log,
		health:    status.NewTracker(),
		threshold: cfg.DefaultThresholdCm,
		sleep:     time.Sleep,
		wait:      waitCtx,
	}, nil
}

// Threshold returns the threshold that the next cycle falls back to.
func (c *Controller) Threshold() int { return c.threshold }

// Health returns the snapshot committed by the last cycle.
func (c *Controller) Health() status.Snapshot { return c.health.Last() }

// RunCycle performs exactly one cycle without the trailing sleep.
// No step failure escapes the cycle.
func (c *Controller) RunCycle(ctx context.Context) CycleResult {
	start := time.Now()
	c.seq++
	res := CycleResult{Seq: c.seq, At: start}

	// 1. threshold
	res.Fetch = c.fetch(ctx)
	res.ThresholdCm = c.threshold

	// 2. measure
	m := c.deps.Sensor.Measure(c.cfg.SensorTimeout)
	c.deps.Metrics.Measured(m.DistanceCm, m.OK)
	if !m.OK {
		err := m.Err
		if err == nil {
			err = sensor.ErrTimeout
		}
		res.Measure = failedStep(err)
		c.health.Observe(status.StepSensor, err)
		c.log.Warnw("measurement failed, skipping report and actuation", "seq", res.Seq, "err", err)

		res.Post, res.Mirror, res.Actuate = skippedStep(), skippedStep(), skippedStep()
		return c.finish(res, start)
	}
	res.Measure = okStep()
	res.DistanceCm = m.DistanceCm
	c.health.Observe(status.StepSensor, nil)

	alert := m.DistanceCm < res.ThresholdCm
	c.log.Infow("distance measured",
		"seq", res.Seq, "distance_cm", m.DistanceCm, "threshold_cm", res.ThresholdCm)

	// 3. report; outcome only logged
	res.Post = c.post(ctx, m.DistanceCm)
	res.Mirror = c.mirror(m.DistanceCm, res.ThresholdCm, alert, m.At)

	// 4. actuate
	if !alert {
		res.Actuate = okStep()
		return c.finish(res, start)
	}

	c.log.Warnw("alert: distance below threshold, pulsing actuator",
		"distance_cm", m.DistanceCm, "threshold_cm", res.ThresholdCm, "pulse", c.cfg.Pulse)

	if err := actuator.Pulse(c.deps.Actuator, c.cfg.Pulse, c.sleep); err != nil {
		res.Actuate = failedStep(err)
		c.log.Errorw("actuator pulse failed", "err", err)
	} else {
		res.Actuate = okStep()
		res.Pulsed = true
		c.deps.Metrics.Pulsed()
	}
	return c.finish(res, start)
}

func (c *Controller) fetch(ctx context.Context) StepResult {
	v, err := c.deps.Remote.FetchThreshold(ctx)
	c.health.Observe(status.StepFetch, err)
	if err != nil {
		c.deps.Metrics.ThresholdFetched(c.threshold, false)
		c.log.Warnw("threshold fetch failed, keeping previous value",
			"threshold_cm", c.threshold, "err", err)
		return failedStep(err)
	}

	if v != c.threshold {
		c.log.Infow("threshold updated", "from", c.threshold, "to", v)
	}
	c.threshold = v
	c.deps.Metrics.ThresholdFetched(v, true)
	return okStep()
}

func (c *Controller) post(ctx context.Context, cm int) StepResult {
	err := c.deps.Remote.PostMeasurement(ctx, cm)
	c.health.Observe(status.StepTelemetry, err)
	if err != nil {
		c.deps.Metrics.TelemetryFailed()
		c.log.Warnw("telemetry post failed", "distance_cm", cm, "err", err)
		return failedStep(err)
	}
	c.log.Debugw("telemetry posted", "distance_cm", cm)
	return okStep()
}

func (c *Controller) mirror(cm, threshold int, alert bool, at time.Time) StepResult {
	if c.deps.Mirror == nil {
		return skippedStep()
	}

	err := c.deps.Mirror.Publish(mirror.Reading{
		Device:      c.cfg.Device,
		DistanceCm:  cm,
		ThresholdCm: threshold,
		Alert:       alert,
		Ts:          at.Unix(),
	})
	if err != nil {
		c.deps.Metrics.MirrorFailed()
		c.log.Debugw("mirror publish failed", "err", err)
		return failedStep(err)
	}
	return okStep()
}

func (c *Controller) finish(res CycleResult, start time.Time) CycleResult {
	snap := c.health.Commit()
	for _, st := range status.Steps {
		c.deps.Metrics.Consecutive(string(st), snap.Consecutive[st])
	}
	c.deps.Metrics.Stale(snap.ThresholdStale)

	if snap.Health != status.HealthOK {
		c.log.Debugw("cycle health", status.Fields(snap)...)
	}

	res.Duration = time.Since(start)
	c.deps.Metrics.CycleDone(res.Duration)
	return res
}
