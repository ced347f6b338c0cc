package adapter

import (
	"context"
	"fmt"

	"github.com/moffa90/go-pic32/pic32"
	"github.com/moffa90/go-pic32/protocol"
)

// TMS wrapper sequences. Instruction scans are entered through
// Select-IR (four TMS bits), data scans through Select-DR (three),
// and both leave the shift state through Exit1/Update (two).
const (
	tmsCommandPrologNbits = 4
	tmsCommandProlog      = 0b0011
	tmsXferPrologNbits    = 3
	tmsXferProlog         = 0b001
	tmsEpilogNbits        = 2
	tmsEpilog             = 0b01

	tmsResetNbits = 6
	tmsReset      = 0b011111
	tmsExitNbits  = 5
	tmsExit       = 0x1F
)

// icspEntryKey is "MCHP"; the target expects it bit-reversed on TMS.
const icspEntryKey = 0x4D434850

type tapMode int

const (
	modeTapReset tapMode = iota
	modeExit
	modeICSPSync
)

// tapCommands is the allow-list of instruction codes sendCommand will
// shift into the TAP instruction register.
var tapCommands = map[uint32]struct{}{
	pic32.MTAPIdcode:     {},
	pic32.TapSwitchMTAP:  {},
	pic32.TapSwitchETAP:  {},
	pic32.MTAPCommand:    {},
	pic32.ETAPAddress:    {},
	pic32.ETAPData:       {},
	pic32.ETAPControl:    {},
	pic32.ETAPEjtagBoot:  {},
	pic32.ETAPNormalBoot: {},
	pic32.ETAPFastData:   {},
}

// send queues one bit-level shift: a TMS prolog, up to 64 TDI bits,
// and a TMS epilog. When read is set the adapter will return the
// 64-bit TDO capture.
func (a *Adapter) send(tmsPrologNbits, tmsProlog, tdiNbits uint32, tdi uint64, tmsEpilogNbits, tmsEpilog uint32, read bool) error {
	cmd, err := protocol.EncodeSendCmd(tmsPrologNbits, tmsProlog, tdiNbits, tdi, tmsEpilogNbits, tmsEpilog, read)
	if err != nil {
		return err
	}
	if err := a.queue(cmd); err != nil {
		return err
	}
	if read {
		a.expectReply(protocol.SendReplySize)
	}
	return nil
}

// setMode drives a raw TMS sequence to move the TAP state machine.
func (a *Adapter) setMode(ctx context.Context, mode tapMode, immediate bool) error {
	switch mode {
	case modeTapReset:
		if err := a.send(tmsResetNbits, tmsReset, 0, 0, 0, 0, false); err != nil {
			return err
		}
	case modeExit:
		if err := a.send(tmsExitNbits, tmsExit, 0, 0, 0, 0, false); err != nil {
			return err
		}
	case modeICSPSync:
		if a.cfg.iface == InterfaceICSP {
			return &UnsupportedOperationError{Op: "ICSP sync over the ICSP interface", Family: a.cfg.family}
		}
		// The key is clocked LSB-first on TMS, one byte per shift.
		key := protocol.Reverse32(icspEntryKey)
		for i := 0; i < 4; i++ {
			if err := a.send(8, key>>(8*uint(i))&0xFF, 0, 0, 0, 0, false); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown TAP mode %d", mode)
	}
	if immediate {
		return a.flush(ctx)
	}
	return nil
}

// sendCommand shifts a 5-bit instruction code into the TAP instruction
// register.
func (a *Adapter) sendCommand(ctx context.Context, code uint32, immediate bool) error {
	if _, ok := tapCommands[code]; !ok {
		return &UnsupportedOperationError{
			Op:     fmt.Sprintf("TAP instruction 0x%02X", code),
			Family: a.cfg.family,
		}
	}
	if err := a.send(tmsCommandPrologNbits, tmsCommandProlog,
		pic32.CommandNbits, uint64(code),
		tmsEpilogNbits, tmsEpilog, false); err != nil {
		return err
	}
	if immediate {
		return a.flush(ctx)
	}
	return nil
}

// xferData shifts nbits of data through the selected register and
// returns the low nbits of the capture when read is set.
func (a *Adapter) xferData(ctx context.Context, nbits, data uint32, read, immediate bool) (uint32, error) {
	if err := a.send(tmsXferPrologNbits, tmsXferProlog,
		nbits, uint64(data),
		tmsEpilogNbits, tmsEpilog, read); err != nil {
		return 0, err
	}
	if read {
		raw, err := a.recvUint64(ctx)
		if err != nil {
			return 0, err
		}
		mask := uint64(1)<<uint(nbits) - 1
		return uint32(raw & mask), nil
	}
	if immediate {
		return 0, a.flush(ctx)
	}
	return 0, nil
}

// xferFastData shifts a 33-bit word through the FASTDATA register: the
// PrACC marker bit followed by the data word. A reply is always
// consumed so the host stays in lockstep with the target; a cleared
// marker in the capture means the processor had not yet granted the
// access.
func (a *Adapter) xferFastData(ctx context.Context, word uint32, read bool) (uint32, error) {
	if err := a.send(tmsXferPrologNbits, tmsXferProlog,
		33, uint64(word)<<1,
		tmsEpilogNbits, tmsEpilog, true); err != nil {
		return 0, err
	}
	raw, err := a.recvUint64(ctx)
	if err != nil {
		return 0, err
	}
	if raw&1 == 0 {
		a.cfg.logger.Warnf("adapter: PrACC not set in FASTDATA transfer (capture 0x%09X)", raw)
	}
	if read {
		return uint32(raw >> 1), nil
	}
	return 0, nil
}

// setPin drives one adapter pin directly.
func (a *Adapter) setPin(ctx context.Context, pin, state byte, immediate bool) error {
	cmd, err := protocol.EncodeSetPinCmd(pin, state)
	if err != nil {
		return err
	}
	if err := a.queue(cmd); err != nil {
		return err
	}
	if immediate {
		return a.flush(ctx)
	}
	return nil
}
