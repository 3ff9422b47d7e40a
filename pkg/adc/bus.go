package adc

import (
	"errors"
	"fmt"

	"github.com/go-daq/smbus"
)

// ErrBus is matched by every error returned from a bus transaction.
var ErrBus = errors.New("adc: bus error")

// Bus is a handle to one device on an I2C bus.
type Bus interface {
	// WriteBlock writes data to register reg.
	WriteBlock(reg uint8, data []byte) error
	// ReadBlock fills buf from register reg.
	ReadBlock(reg uint8, buf []byte) error
	Close() error
}

// BusError describes a failed bus transaction.
type BusError struct {
	Op  string // "open", "write" or "read"
	Reg uint8
	Err error
}

func (e *BusError) Error() string {
	if e.Op == "open" {
		return fmt.Sprintf("adc: bus open: %v", e.Err)
	}
	return fmt.Sprintf("adc: bus %s reg=0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Is reports every BusError as ErrBus.
func (e *BusError) Is(target error) bool { return target == ErrBus }

// SMBus is a Bus backed by the Linux i2c-dev interface.
type SMBus struct {
	conn *smbus.Conn
	addr uint8
}

var _ Bus = (*SMBus)(nil)

// OpenSMBus opens /dev/i2c-<bus> and addresses the device at addr.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, &BusError{Op: "open", Err: fmt.Errorf("could not open i2c-%d at 0x%02x: %w", bus, addr, err)}
	}

	err = conn.SetAddr(addr)
	if err != nil {
		_ = conn.Close()
		return nil, &BusError{Op: "open", Err: fmt.Errorf("could not address 0x%02x on i2c-%d: %w", addr, bus, err)}
	}

	return &SMBus{conn: conn, addr: addr}, nil
}

// WriteBlock writes data to register reg with an i2c block write.
func (b *SMBus) WriteBlock(reg uint8, data []byte) error {
	return b.conn.WriteBlockData(b.addr, reg, data)
}

// ReadBlock fills buf from register reg with an i2c block read.
func (b *SMBus) ReadBlock(reg uint8, buf []byte) error {
	return b.conn.ReadBlockData(b.addr, reg, buf)
}

// Close releases the bus handle.
func (b *SMBus) Close() error {
	return b.conn.Close()
}
