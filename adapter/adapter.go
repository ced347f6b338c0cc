package adapter

import (
	"context"
	"time"

	"github.com/moffa90/go-pic32/pic32"
	"github.com/moffa90/go-pic32/protocol"
)

// idcodeRetryLimit bounds the open-time device detection loop.
const idcodeRetryLimit = 11

// Adapter is a programming session with a PIC32 target through a
// packet-protocol adapter. Sessions are created with Open and are not
// safe for concurrent use.
type Adapter struct {
	transport Transport
	cfg       Config

	out        *protocol.Packet
	in         []byte
	inLen      int
	cursor     int
	replyBytes int

	info   *protocol.Info
	idcode uint32

	serialExec   bool
	useExecutive bool
}

// Capabilities reports the operations a session supports.
type Capabilities struct {
	Probe bool
	Erase bool
	Read  bool
	Write bool
}

// Open connects to the adapter behind t, identifies it, puts the
// target into the selected programming mode and verifies that a
// Microchip device answers on the scan chain.
//
// Open takes ownership of t: a successful Open means Close must be
// called to release it, and a failed Open leaves t open for the
// caller.
func Open(ctx context.Context, t Transport, opts ...Option) (*Adapter, error) {
	if t == nil {
		panic("adapter: nil transport")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.strategy != TransferSynchronous {
		return nil, &UnsupportedOperationError{Op: "pipelined transfer strategy", Family: cfg.family}
	}
	if !cfg.family.Valid() {
		return nil, &UnsupportedOperationError{Op: "session for unknown family", Family: cfg.family}
	}

	a := &Adapter{
		transport: t,
		cfg:       cfg,
		out:       protocol.NewPacket(),
	}

	if err := a.getInfo(ctx); err != nil {
		return nil, err
	}
	a.cfg.logger.Infof("adapter: found %s (MCU %s, firmware %s)",
		a.info.Name, a.info.MCU, a.info.FirmwareVersion)

	mode := byte(protocol.ProgModeJTAG)
	if cfg.iface == InterfaceICSP {
		mode = protocol.ProgModeICSP
	}
	if err := a.setProgMode(ctx, mode); err != nil {
		return nil, err
	}
	if cfg.speedKHz != 0 {
		if err := a.setSpeed(ctx, cfg.speedKHz); err != nil {
			return nil, err
		}
	}

	if err := a.detect(ctx); err != nil {
		return nil, err
	}
	a.cfg.logger.Infof("adapter: IDCODE=0x%08X", a.idcode)

	// The MM family's JTAG logic does not respond while in reset, and
	// the other families tolerate the same release pulse.
	if cfg.iface != InterfaceICSP {
		if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
			return nil, err
		}
		if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
			return nil, &TransportError{Op: "wait", Err: err}
		}
		if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
			return nil, err
		}
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return nil, &TransportError{Op: "wait", Err: err}
	}

	if err := a.checkStatus(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// detect runs the bounded device detection loop: reset the TAP, select
// the IDCODE register and check the manufacturer field.
func (a *Adapter) detect(ctx context.Context) error {
	var idcode uint32
	for attempt := 0; attempt < idcodeRetryLimit; attempt++ {
		if a.cfg.iface == InterfaceICSP {
			if err := a.enterICSP(ctx); err != nil {
				return err
			}
		}
		if err := a.cfg.sleep(ctx, 5*time.Millisecond); err != nil {
			return &TransportError{Op: "wait", Err: err}
		}

		// After a TAP reset the IDCODE register is always selected.
		if err := a.setMode(ctx, modeTapReset, true); err != nil {
			return err
		}
		if err := a.sendCommand(ctx, pic32.TapSwitchMTAP, true); err != nil {
			return err
		}
		if err := a.setMode(ctx, modeTapReset, true); err != nil {
			return err
		}
		if err := a.sendCommand(ctx, pic32.MTAPIdcode, true); err != nil {
			return err
		}
		var err error
		idcode, err = a.xferData(ctx, 32, 0, true, true)
		if err != nil {
			return err
		}
		if idcode&pic32.IDCodeVendorMask == pic32.IDCodeMicrochip {
			a.idcode = idcode
			return nil
		}
		a.cfg.logger.Warnf("adapter: incompatible CPU detected, IDCODE=0x%08X, retrying", idcode)
	}

	// Release the reset line before giving up.
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
		a.cfg.logger.Debugf("adapter: releasing reset: %v", err)
	}
	return &SyncError{IDCode: idcode}
}

// checkStatus enables flash access and verifies the MCHP status
// register reads sane. On failure the programming pins are released.
func (a *Adapter) checkStatus(ctx context.Context) error {
	if err := a.sendCommand(ctx, pic32.TapSwitchMTAP, true); err != nil {
		return err
	}
	if err := a.sendCommand(ctx, pic32.MTAPCommand, true); err != nil {
		return err
	}
	if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPFlashEnable, false, true); err != nil {
		return err
	}
	status, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPStatus, true, true)
	if err != nil {
		return err
	}
	a.cfg.logger.Debugf("adapter: status 0x%04X", status)
	if status&(pic32.StatusCfgRdy|pic32.StatusFCBusy) != pic32.StatusCfgRdy {
		if err := a.setProgMode(ctx, protocol.ProgModeTristate); err != nil {
			a.cfg.logger.Debugf("adapter: releasing pins: %v", err)
		}
		return &StatusError{Status: status}
	}
	return nil
}

// Close resets the target so it boots into its application, releases
// the programming pins and closes the transport.
func (a *Adapter) Close(ctx context.Context) error {
	if err := a.sendCommand(ctx, pic32.TapSwitchETAP, true); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}
	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}

	// Hold reset long enough for a clean application restart.
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}
	if err := a.cfg.sleep(ctx, 100*time.Millisecond); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
		a.cfg.logger.Debugf("adapter: close: %v", err)
	}

	if err := a.transport.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// Info returns the adapter identification parsed at open time.
func (a *Adapter) Info() protocol.Info {
	return *a.info
}

// IDCode returns the device identification word read at open time.
func (a *Adapter) IDCode() uint32 {
	return a.idcode
}

// Family returns the device family the session was configured for.
func (a *Adapter) Family() pic32.Family {
	return a.cfg.family
}

// Capabilities reports what this session can do. The packet adapter
// supports the full set.
func (a *Adapter) Capabilities() Capabilities {
	return Capabilities{Probe: true, Erase: true, Read: true, Write: true}
}

// ReadIDCode re-reads the device identification word. A TAP reset
// leaves the IDCODE register selected.
func (a *Adapter) ReadIDCode(ctx context.Context) (uint32, error) {
	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		return 0, err
	}
	return a.xferData(ctx, 32, 0, true, true)
}

func (a *Adapter) getInfo(ctx context.Context) error {
	if err := a.queue(protocol.EncodeGetInfoCmd()); err != nil {
		return err
	}
	a.expectReply(protocol.InfoReplySize)
	if err := a.flush(ctx); err != nil {
		return err
	}
	block, err := a.take(protocol.InfoReplySize)
	if err != nil {
		return err
	}
	info, err := protocol.ParseInfo(block)
	if err != nil {
		return err
	}
	a.info = info
	return nil
}

func (a *Adapter) setProgMode(ctx context.Context, mode byte) error {
	cmd, err := protocol.EncodeSetProgModeCmd(mode)
	if err != nil {
		return err
	}
	if err := a.queue(cmd); err != nil {
		return err
	}
	return a.flush(ctx)
}

func (a *Adapter) setSpeed(ctx context.Context, khz uint32) error {
	if err := a.queue(protocol.EncodeSetSpeedCmd(khz)); err != nil {
		return err
	}
	return a.flush(ctx)
}
