package adapter

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-pic32/pic32"
)

// Interface selects the physical programming interface between the
// adapter and the target.
type Interface int

const (
	// InterfaceDefault uses the adapter's JTAG pins without forcing a
	// low-voltage ICSP entry sequence.
	InterfaceDefault Interface = iota

	// InterfaceJTAG uses the four-wire JTAG interface.
	InterfaceJTAG

	// InterfaceICSP uses the two-wire ICSP interface with the
	// low-voltage entry key.
	InterfaceICSP
)

func (i Interface) String() string {
	switch i {
	case InterfaceDefault:
		return "default"
	case InterfaceJTAG:
		return "JTAG"
	case InterfaceICSP:
		return "ICSP"
	default:
		return "unknown"
	}
}

// TransferStrategy selects how bulk word transfers are paced against
// adapter replies.
type TransferStrategy int

const (
	// TransferSynchronous requests and consumes a reply for every
	// FASTDATA word, keeping the host and target in lockstep.
	TransferSynchronous TransferStrategy = iota

	// TransferPipelined streams words without per-word replies. Not
	// implemented; Open rejects it.
	TransferPipelined
)

type sleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the session configuration. Use the With* options to
// change defaults.
type Config struct {
	logger       *logrus.Logger
	iface        Interface
	family       pic32.Family
	speedKHz     uint32
	readTimeout  time.Duration
	pollInterval time.Duration
	retryDelay   time.Duration
	strategy     TransferStrategy
	progress     ProgressCallback
	sleep        sleepFunc
}

// Option configures an Adapter session.
type Option func(*Config)

// WithLogger sets the logger used for protocol tracing and warnings.
// The default is the logrus standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithInterface selects the programming interface.
func WithInterface(i Interface) Option {
	return func(c *Config) {
		c.iface = i
	}
}

// WithFamily sets the target device family, which gates the code
// sequences used for executive loading and flash programming.
func WithFamily(f pic32.Family) Option {
	return func(c *Config) {
		c.family = f
	}
}

// WithSpeed sets the adapter's shift clock in kHz. Zero leaves the
// adapter's default speed untouched.
func WithSpeed(khz uint32) Option {
	return func(c *Config) {
		c.speedKHz = khz
	}
}

// WithReadTimeout bounds each transport read while waiting for a
// reply.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.readTimeout = d
	}
}

// WithPollInterval sets the delay between flash controller status
// polls during erase.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.pollInterval = d
	}
}

// WithTransferStrategy selects the bulk transfer strategy.
func WithTransferStrategy(s TransferStrategy) Option {
	return func(c *Config) {
		c.strategy = s
	}
}

// WithProgressCallback registers a callback for long operations.
func WithProgressCallback(cb ProgressCallback) Option {
	return func(c *Config) {
		c.progress = cb
	}
}

// withSleep replaces the delay function. Tests use it to run the
// retry and poll loops without real time passing.
func withSleep(fn sleepFunc) Option {
	return func(c *Config) {
		c.sleep = fn
	}
}

func defaultConfig() Config {
	return Config{
		logger:       logrus.StandardLogger(),
		iface:        InterfaceDefault,
		family:       pic32.FamilyMX3,
		readTimeout:  time.Second,
		pollInterval: 10 * time.Millisecond,
		retryDelay:   time.Second,
		strategy:     TransferSynchronous,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
