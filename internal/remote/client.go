// internal/remote/client.go
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultTimeout bounds each request end to end.
const DefaultTimeout = 5 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 4 << 10

// Kind classifies a request failure.
type Kind int

const (
	// KindTransport: no usable HTTP response (dial, timeout, reset).
	KindTransport Kind = iota + 1
	// KindProtocol: a response arrived but was not acceptable.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation that fails.
type Error struct {
	Op     string
	Kind   Kind
	Status int // 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err is a remote transport failure.
func IsTransport(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindTransport
}

// Endpoint locates the backend.
type Endpoint struct {
	BaseURL    string
	ConfigPath string
	LogsPath   string
}

// Client talks to the configuration and telemetry backend.
// A Client is safe for concurrent use. It never retries.
type Client struct {
	ep      Endpoint
	http    *http.Client
	timeout time.Duration
}

// New builds a client. A zero timeout means DefaultTimeout.
func New(ep Endpoint, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if ep.ConfigPath == "" {
		ep.ConfigPath = "/config"
	}
	if ep.LogsPath == "" {
		ep.LogsPath = "/logs"
	}
	ep.BaseURL = strings.TrimRight(ep.BaseURL, "/")

	return &Client{
		ep:      ep,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// HTTPClient exposes the underlying client so tests can intercept it.
func (c *Client) HTTPClient() *http.Client { return c.http }

// ---- operations ----

type measurementBody struct {
	DistanceCm int `json:"distancia_cm"`
}

// FetchThreshold reads the alert threshold in centimeters.
// Only status 200 with a non-negative numeric threshold_cm is accepted.
// Fractional values are truncated.
func (c *Client) FetchThreshold(ctx context.Context) (int, error) {
	const op = "fetch threshold"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.BaseURL+c.ep.ConfigPath, nil)
	if err != nil {
		return 0, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &Error{Op: op, Kind: KindProtocol, Status: resp.StatusCode, Err: errors.New("unexpected status")}
	}

	// the whole body must be one JSON value; Decode alone stops after the first
	if !json.Valid(body) {
		return 0, &Error{Op: op, Kind: KindProtocol, Status: resp.StatusCode, Err: errors.New("body is not valid json")}
	}

	var doc map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return 0, &Error{Op: op, Kind: KindProtocol, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}

	v, err := thresholdValue(doc["threshold_cm"])
	if err != nil {
		return 0, &Error{Op: op, Kind: KindProtocol, Status: resp.StatusCode, Err: err}
	}
	return v, nil
}

// PostMeasurement publishes one distance reading. Any 2xx is success.
func (c *Client) PostMeasurement(ctx context.Context, distanceCm int) error {
	const op = "post measurement"

	payload, err := json.Marshal(measurementBody{DistanceCm: distanceCm})
	if err != nil {
		return &Error{Op: op, Kind: KindProtocol, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ep.BaseURL+c.ep.LogsPath, bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Kind: KindProtocol, Status: resp.StatusCode, Err: errors.New("unexpected status")}
	}
	return nil
}

// thresholdValue accepts only a JSON number; strings and booleans are rejected.
func thresholdValue(raw interface{}) (int, error) {
	if raw == nil {
		return 0, errors.New("threshold_cm missing or null")
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("threshold_cm has type %T, want number", raw)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("threshold_cm not a number: %w", err)
	}
	if f < 0 {
		return 0, fmt.Errorf("threshold_cm negative: %v", f)
	}
	if f > float64(1<<31-1) {
		return 0, fmt.Errorf("threshold_cm out of range: %v", f)
	}
	return int(f), nil
}
