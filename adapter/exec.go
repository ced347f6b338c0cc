package adapter

import (
	"context"
	"time"

	"github.com/moffa90/go-pic32/pic32"
	"github.com/moffa90/go-pic32/protocol"
)

// Retry budgets for the EJTAG control register polls.
const (
	instructionRetryLimit = 40
	bootstrapRetryLimit   = 20
	controlPollLimit      = 11
	peResponsePollLimit   = 40
)

// xferInstruction feeds one CPU instruction to the target through the
// EJTAG processor-access mechanism. The CPU must already be parked on
// the debug vector by serialExecution.
func (a *Adapter) xferInstruction(ctx context.Context, instruction uint32) error {
	if err := a.sendCommand(ctx, pic32.ETAPControl, true); err != nil {
		return err
	}
	for attempt := 0; ; attempt++ {
		ctl, err := a.xferData(ctx, 32,
			pic32.ControlPrAcc|pic32.ControlProbEn|pic32.ControlProbTrap|pic32.ControlEjtagBrk,
			true, true)
		if err != nil {
			return err
		}
		if ctl&pic32.ControlProbEn != 0 {
			break
		}
		a.cfg.logger.Debugf("adapter: instruction wait, control=0x%08X", ctl)
		if attempt+1 >= instructionRetryLimit {
			return &ExecutionError{Op: "instruction transfer", Control: ctl}
		}
		if err := a.cfg.sleep(ctx, a.cfg.retryDelay); err != nil {
			return &TransportError{Op: "wait", Err: err}
		}
	}

	if err := a.sendCommand(ctx, pic32.ETAPData, true); err != nil {
		return err
	}
	if _, err := a.xferData(ctx, 32, instruction, false, true); err != nil {
		return err
	}
	if err := a.sendCommand(ctx, pic32.ETAPControl, true); err != nil {
		return err
	}
	_, err := a.xferData(ctx, 32, pic32.ControlProbEn|pic32.ControlProbTrap, false, true)
	return err
}

// getPEResponse waits for the executive to post a word through the
// processor-access window and reads it back.
func (a *Adapter) getPEResponse(ctx context.Context) (uint32, error) {
	if err := a.sendCommand(ctx, pic32.ETAPControl, true); err != nil {
		return 0, err
	}
	var ctl uint32
	for attempt := 0; ; attempt++ {
		var err error
		ctl, err = a.xferData(ctx, 32,
			pic32.ControlPrAcc|pic32.ControlProbEn|pic32.ControlProbTrap|pic32.ControlEjtagBrk,
			true, true)
		if err != nil {
			return 0, err
		}
		if ctl&pic32.ControlPrAcc != 0 {
			break
		}
		if attempt+1 >= peResponsePollLimit {
			return 0, &ExecutionError{Op: "PE response", Control: ctl}
		}
	}

	if err := a.sendCommand(ctx, pic32.ETAPData, true); err != nil {
		return 0, err
	}
	response, err := a.xferData(ctx, 32, 0, true, true)
	if err != nil {
		return 0, err
	}
	if err := a.sendCommand(ctx, pic32.ETAPControl, true); err != nil {
		return 0, err
	}
	if _, err := a.xferData(ctx, 32, pic32.ControlProbEn|pic32.ControlProbTrap, false, true); err != nil {
		return 0, err
	}
	a.cfg.logger.Debugf("adapter: PE response 0x%08X", response)
	return response, nil
}

// serialExecution parks the CPU on the EJTAG debug vector so that
// instructions can be injected. Once entry succeeds the session stays
// in serial-execution mode until Close; a failed entry leaves the
// session out of debug mode and the next call starts over.
func (a *Adapter) serialExecution(ctx context.Context) error {
	if a.serialExec {
		return nil
	}
	a.cfg.logger.Debug("adapter: entering serial execution")

	if err := a.sendCommand(ctx, pic32.TapSwitchMTAP, false); err != nil {
		return err
	}
	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		return err
	}
	if err := a.sendCommand(ctx, pic32.MTAPCommand, false); err != nil {
		return err
	}
	status, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPStatus, true, true)
	if err != nil {
		return err
	}
	if status&pic32.StatusCPS == 0 {
		return &CodeProtectError{Status: status}
	}

	var ctl uint32
	for attempt := 0; attempt < bootstrapRetryLimit; attempt++ {
		if a.cfg.iface == InterfaceICSP {
			if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPAssertRst, false, true); err != nil {
				return err
			}
		} else {
			if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
				return err
			}
		}

		if err := a.sendCommand(ctx, pic32.TapSwitchETAP, true); err != nil {
			return err
		}
		if err := a.setMode(ctx, modeTapReset, true); err != nil {
			return err
		}
		if err := a.sendCommand(ctx, pic32.ETAPEjtagBoot, true); err != nil {
			return err
		}

		if a.cfg.iface == InterfaceICSP {
			if err := a.sendCommand(ctx, pic32.TapSwitchMTAP, true); err != nil {
				return err
			}
			if err := a.setMode(ctx, modeTapReset, true); err != nil {
				return err
			}
			if err := a.sendCommand(ctx, pic32.MTAPCommand, true); err != nil {
				return err
			}
			if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPDeassertRst, false, true); err != nil {
				return err
			}
			if a.cfg.family.SharesICSPPins() {
				if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPFlashEnable, false, true); err != nil {
					return err
				}
			}
			if err := a.sendCommand(ctx, pic32.TapSwitchETAP, true); err != nil {
				return err
			}
			if err := a.setMode(ctx, modeTapReset, true); err != nil {
				return err
			}
		} else {
			if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
				return err
			}
		}

		if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
			return &TransportError{Op: "wait", Err: err}
		}
		if err := a.setMode(ctx, modeTapReset, true); err != nil {
			return err
		}
		if err := a.sendCommand(ctx, pic32.TapSwitchETAP, true); err != nil {
			return err
		}
		if err := a.setMode(ctx, modeTapReset, true); err != nil {
			return err
		}
		if err := a.sendCommand(ctx, pic32.ETAPControl, true); err != nil {
			return err
		}

		ready := false
		for poll := 0; poll < controlPollLimit; poll++ {
			ctl, err = a.xferData(ctx, 32,
				pic32.ControlPrAcc|pic32.ControlProbEn|pic32.ControlProbTrap,
				true, true)
			if err != nil {
				return err
			}
			if ctl&pic32.ControlProbEn != 0 {
				ready = true
				break
			}
		}
		if ready {
			if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
				return &TransportError{Op: "wait", Err: err}
			}
			a.serialExec = true
			return nil
		}

		a.cfg.logger.Warnf("adapter: serial execution entry failed, control=0x%08X", ctl)
		if a.cfg.iface != InterfaceICSP {
			if !a.cfg.family.SharesICSPPins() {
				return &BootstrapError{Attempts: attempt + 1, Control: ctl, Recoverable: false}
			}
			// On parts where the ICSP pins double as JTAG pins, a
			// low-voltage entry sequence can unwedge the TAP.
			a.cfg.logger.Info("adapter: retrying entry after ICSP synchronization")
			if err := a.icspRecovery(ctx); err != nil {
				return err
			}
		}
	}
	return &BootstrapError{Attempts: bootstrapRetryLimit, Control: ctl, Recoverable: true}
}

// icspRecovery drops the device into ICSP mode and back to release a
// wedged TAP on families that share the ICSP and JTAG pins.
func (a *Adapter) icspRecovery(ctx context.Context) error {
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 5*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	if err := a.setMode(ctx, modeICSPSync, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 5*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 5*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	return a.cfg.sleep(ctx, 100*time.Millisecond)
}

// enterICSP performs the low-voltage ICSP entry sequence: an MCLR
// pulse train followed by the 32-bit entry key clocked on TMS (PGED).
func (a *Adapter) enterICSP(ctx context.Context) error {
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
		return err
	}
	if err := a.setPin(ctx, protocol.PinTMS, protocol.PinOutputLow, true); err != nil {
		return err
	}
	if err := a.setPin(ctx, protocol.PinTCK, protocol.PinOutputLow, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputLow, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}

	// The key is clocked LSB-first on TMS (PGED), one TCK pulse per bit.
	key := protocol.Reverse32(icspEntryKey)
	for i := 0; i < 32; i++ {
		bit := byte(key >> uint(i) & 1)
		if err := a.setPin(ctx, protocol.PinTMS, bit, true); err != nil {
			return err
		}
		if err := a.setPin(ctx, protocol.PinTCK, protocol.PinOutputHigh, true); err != nil {
			return err
		}
		if err := a.setPin(ctx, protocol.PinTCK, protocol.PinOutputLow, true); err != nil {
			return err
		}
	}
	if err := a.cfg.sleep(ctx, 5*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	return a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true)
}
