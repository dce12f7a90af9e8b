// internal/sensor/modbus.go
package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"
)

// ModbusConfig describes a rangefinder that publishes centimeters in one
// holding register of a Modbus TCP slave.
type ModbusConfig struct {
	Endpoint      string
	UnitID        uint8
	Register      uint16
	MaxDistanceCm int
}

// registerReader is the subset of modbus.Client the sensor needs.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

type modbusConn struct {
	handler *modbus.TCPClientHandler
	client  registerReader
}

// Modbus is a Sensor over Modbus TCP.
// The connection is reused while healthy. After a transport error it is
// discarded and the next Measure dials again (one attempt per call).
type Modbus struct {
	cfg ModbusConfig
	log *zap.SugaredLogger

	mu   sync.Mutex
	dial func(timeout time.Duration) (registerReader, func() error, error)
	conn registerReader
	drop func() error
}

func NewModbus(c ModbusConfig, log *zap.SugaredLogger) (*Modbus, error) {
	if c.Endpoint == "" {
		return nil, errors.New("modbus sensor: endpoint required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Modbus{cfg: c, log: log}
	s.dial = func(timeout time.Duration) (registerReader, func() error, error) {
		h := modbus.NewTCPClientHandler(c.Endpoint)
		h.Timeout = timeout
		h.SlaveId = c.UnitID
		if err := h.Connect(); err != nil {
			return nil, nil, err
		}
		return modbus.NewClient(h), h.Close, nil
	}
	return s, nil
}

func (s *Modbus) Measure(timeout time.Duration) Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, closer, err := s.dial(timeout)
		if err != nil {
			return fault(fmt.Errorf("modbus sensor: dial: %w", err))
		}
		s.conn, s.drop = conn, closer
	}

	raw, err := s.conn.ReadHoldingRegisters(s.cfg.Register, 1)
	if err != nil {
		s.discard()
		var mbErr *modbus.ModbusError
		if !errors.As(err, &mbErr) && isTimeout(err) {
			return fault(ErrTimeout)
		}
		return fault(fmt.Errorf("modbus sensor: read: %w", err))
	}
	if len(raw) < 2 {
		return fault(errors.New("modbus sensor: short register payload"))
	}

	cm := int(uint16(raw[0])<<8 | uint16(raw[1]))
	if s.cfg.MaxDistanceCm > 0 && cm > s.cfg.MaxDistanceCm {
		return fault(ErrOutOfRange)
	}
	return ok(cm)
}

func (s *Modbus) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discard()
}

func (s *Modbus) discard() error {
	if s.drop == nil {
		return nil
	}
	err := s.drop()
	if err != nil {
		s.log.Debugw("modbus sensor close", "err", err)
	}
	s.conn, s.drop = nil, nil
	return err
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
