// internal/actuator/modbus.go
package actuator

import (
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Coil values for function 5.
const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

type ModbusConfig struct {
	Endpoint  string
	UnitID    uint8
	Coil      uint16
	ActiveLow bool
	Timeout   time.Duration
}

type coilWriter interface {
	WriteSingleCoil(address, value uint16) ([]byte, error)
}

// Modbus drives one coil on a Modbus TCP slave (relay module, PLC output).
// Requests are serialized on the single connection.
type Modbus struct {
	mu        sync.Mutex
	handler   *modbus.TCPClientHandler
	client    coilWriter
	coil      uint16
	activeLow bool
}

func NewModbus(c ModbusConfig) (*Modbus, error) {
	if c.Endpoint == "" {
		return nil, errors.New("modbus actuator: endpoint required")
	}

	h := modbus.NewTCPClientHandler(c.Endpoint)
	h.Timeout = c.Timeout
	h.SlaveId = c.UnitID

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &Modbus{
		handler:   h,
		client:    modbus.NewClient(h),
		coil:      c.Coil,
		activeLow: c.ActiveLow,
	}, nil
}

func (m *Modbus) SetLevel(active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := coilOff
	if active != m.activeLow {
		v = coilOn
	}
	_, err := m.client.WriteSingleCoil(m.coil, v)
	return err
}

func (m *Modbus) Close() error {
	offErr := m.SetLevel(false)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler == nil {
		return offErr
	}
	return errors.Join(offErr, m.handler.Close())
}
