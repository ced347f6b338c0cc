// Package serialport provides the serial transport for talking to a
// programming adapter. It satisfies the adapter.Transport interface.
package serialport

import (
	"fmt"
	"time"

	"github.com/pkg/term"
)

// Port is an open serial connection in raw mode.
type Port struct {
	term *term.Term
	path string
}

// Open opens the serial device at path with the given baud rate and
// switches it to raw mode.
func Open(path string, baud int) (*Port, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Port{term: t, path: path}, nil
}

// Path returns the device path the port was opened with.
func (p *Port) Path() string {
	return p.path
}

func (p *Port) Write(b []byte) (int, error) {
	return p.term.Write(b)
}

// Read fills b with available bytes, waiting at most timeout for the
// first byte to arrive.
func (p *Port) Read(b []byte, timeout time.Duration) (int, error) {
	if err := p.term.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("setting read timeout on %s: %w", p.path, err)
	}
	n, err := p.term.Read(b)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", p.path, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("reading %s: timeout after %v", p.path, timeout)
	}
	return n, nil
}

// Close restores the terminal settings and closes the device.
func (p *Port) Close() error {
	if err := p.term.Restore(); err != nil {
		p.term.Close()
		return fmt.Errorf("restoring %s: %w", p.path, err)
	}
	if err := p.term.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p.path, err)
	}
	return nil
}
