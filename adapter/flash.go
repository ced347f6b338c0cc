package adapter

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/moffa90/go-pic32/pic32"
	"github.com/moffa90/go-pic32/protocol"
)

// ReadWord reads one word from target memory without the programming
// executive, by injecting a short load/store sequence that bounces the
// value off the FASTDATA register.
func (a *Adapter) ReadWord(ctx context.Context, addr uint32) (uint32, error) {
	// The first word read after entering serial execution is garbage
	// on the MM family; read twice and keep the second.
	times := 1
	if a.serialExec {
		times = 0
	}
	if err := a.serialExecution(ctx); err != nil {
		return 0, err
	}

	var word uint32
	for ; times >= 0; times-- {
		var err error
		word, err = a.readWordOnce(ctx, addr)
		if err != nil {
			return 0, err
		}
	}
	a.cfg.logger.Debugf("adapter: read word at 0x%08X -> 0x%08X", addr, word)
	return word, nil
}

func (a *Adapter) readWordOnce(ctx context.Context, addr uint32) (uint32, error) {
	addrHi := addr >> 16 & 0xFFFF
	addrLo := addr & 0xFFFF

	var instrs []uint32
	if a.cfg.family == pic32.FamilyMM {
		instrs = []uint32{
			0xFF2041B3,            // lui s3, FASTDATA_REG(31:16)
			0x000041A8 | addrHi<<16, // lui t0, addr_hi
			0x00005108 | addrLo<<16, // ori t0, addr_lo
			0x0000FD28,            // lw  t1, 0(t0)
			0x0000F933,            // sw  t1, 0(s3)
			0x0C000C00,            // nop x2
			0x0C000C00,            // nop x2 - required, the pipeline stalls without four
		}
	} else {
		instrs = []uint32{
			0x3c13ff20,         // lui s3, FASTDATA_REG(31:16)
			0x3c080000 | addrHi, // lui t0, addr_hi
			0x35080000 | addrLo, // ori t0, addr_lo
			0x8d090000,         // lw  t1, 0(t0)
			0xae690000,         // sw  t1, 0(s3)
			0x00000000,         // nop - required
		}
	}
	for _, instr := range instrs {
		if err := a.xferInstruction(ctx, instr); err != nil {
			return 0, err
		}
	}

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return 0, err
	}
	return a.xferFastData(ctx, 0, true)
}

// ReadData reads nwords of target memory starting at addr. With the
// programming executive loaded it reads in 32-word bursts; without it
// it falls back to word-at-a-time reads.
func (a *Adapter) ReadData(ctx context.Context, addr uint32, nwords int) ([]uint32, error) {
	data := make([]uint32, 0, nwords)

	if !a.useExecutive {
		for i := 0; i < nwords; i++ {
			word, err := a.ReadWord(ctx, addr)
			if err != nil {
				return nil, err
			}
			data = append(data, word)
			addr += 4
		}
		return data, nil
	}

	// The executive always answers a READ with a full burst; trailing
	// words beyond nwords are consumed and dropped.
	for read := 0; read < nwords; read += pic32.PEReadBurstWords {
		if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
			return nil, err
		}
		if _, err := a.xferFastData(ctx, pic32.PERead<<16|pic32.PEReadBurstWords, false); err != nil {
			return nil, err
		}
		if _, err := a.xferFastData(ctx, addr, false); err != nil {
			return nil, err
		}

		response, err := a.getPEResponse(ctx)
		if err != nil {
			return nil, err
		}
		if response != pic32.PERead<<16 {
			return nil, &PEResponseError{Op: "read", Opcode: pic32.PERead, Response: response}
		}
		for i := 0; i < pic32.PEReadBurstWords; i++ {
			word, err := a.getPEResponse(ctx)
			if err != nil {
				return nil, err
			}
			if len(data) < nwords {
				data = append(data, word)
			}
		}
		addr += pic32.PEReadBurstWords * 4
		a.reportProgress(PhaseReading, len(data), nwords)
	}
	return data, nil
}

// EraseChip performs a full chip erase through the MTAP and waits for
// the flash controller to finish.
func (a *Adapter) EraseChip(ctx context.Context) error {
	if err := a.sendCommand(ctx, pic32.TapSwitchMTAP, true); err != nil {
		return err
	}
	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		return err
	}
	if err := a.sendCommand(ctx, pic32.MTAPCommand, true); err != nil {
		return err
	}
	if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPErase, false, true); err != nil {
		return err
	}
	if _, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPDeassertRst, false, true); err != nil {
		return err
	}
	if a.cfg.iface != InterfaceICSP {
		if err := a.setPin(ctx, protocol.PinMCLR, protocol.PinOutputHigh, true); err != nil {
			return err
		}
	}

	for {
		status, err := a.xferData(ctx, pic32.MTAPCommandDRNbits, pic32.MCHPStatus, true, true)
		if err != nil {
			return err
		}
		if status&pic32.StatusCfgRdy != 0 && status&pic32.StatusFCBusy == 0 {
			break
		}
		a.cfg.logger.Debugf("adapter: erase in progress, status=0x%02X", status)
		if err := a.cfg.sleep(ctx, a.cfg.pollInterval); err != nil {
			return &TransportError{Op: "wait", Err: err}
		}
	}

	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 25*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}
	a.cfg.logger.Debug("adapter: chip erased")
	return nil
}

// ProgramWord writes one word of flash through the executive. Not
// available on the MM family, which programs in double words.
func (a *Adapter) ProgramWord(ctx context.Context, addr, word uint32) error {
	if !a.cfg.family.SupportsWordProgram() {
		return &UnsupportedOperationError{Op: "word program", Family: a.cfg.family}
	}
	if !a.useExecutive {
		return &UnsupportedOperationError{Op: "flash write without the executive", Family: a.cfg.family}
	}
	a.cfg.logger.Debugf("adapter: program word at 0x%08X: 0x%08X", addr, word)

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, pic32.PEWordProgram<<16|2, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, addr, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, word, false); err != nil {
		return err
	}
	return a.checkPEEcho(ctx, "word program", pic32.PEWordProgram)
}

// ProgramDoubleWord writes two adjacent words of flash. Only the MM
// family supports this operation.
func (a *Adapter) ProgramDoubleWord(ctx context.Context, addr, word0, word1 uint32) error {
	if !a.cfg.family.SupportsDoubleWordProgram() {
		return &UnsupportedOperationError{Op: "double word program", Family: a.cfg.family}
	}
	if !a.useExecutive {
		return &UnsupportedOperationError{Op: "flash write without the executive", Family: a.cfg.family}
	}
	a.cfg.logger.Debugf("adapter: program double word at 0x%08X: 0x%08X 0x%08X", addr, word0, word1)

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}
	for _, w := range []uint32{pic32.PEDoubleWordProgram<<16 | 2, addr, word0, word1} {
		if _, err := a.xferFastData(ctx, w, false); err != nil {
			return err
		}
	}
	return a.checkPEEcho(ctx, "double word program", pic32.PEDoubleWordProgram)
}

// ProgramQuadWord writes four adjacent words of flash. Only the MK and
// MZ families support this operation.
func (a *Adapter) ProgramQuadWord(ctx context.Context, addr, word0, word1, word2, word3 uint32) error {
	if !a.cfg.family.SupportsQuadWordProgram() {
		return &UnsupportedOperationError{Op: "quad word program", Family: a.cfg.family}
	}
	if !a.useExecutive {
		return &UnsupportedOperationError{Op: "flash write without the executive", Family: a.cfg.family}
	}
	a.cfg.logger.Debugf("adapter: program quad word at 0x%08X", addr)

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}
	for _, w := range []uint32{pic32.PEQuadWordProgram << 16, addr, word0, word1, word2, word3} {
		if _, err := a.xferFastData(ctx, w, false); err != nil {
			return err
		}
	}
	return a.checkPEEcho(ctx, "quad word program", pic32.PEQuadWordProgram)
}

// ProgramRow writes one flash row through the executive. len(words)
// must be the device's row size in words.
func (a *Adapter) ProgramRow(ctx context.Context, addr uint32, words []uint32) error {
	if !a.useExecutive {
		return &UnsupportedOperationError{Op: "flash write without the executive", Family: a.cfg.family}
	}
	a.cfg.logger.Debugf("adapter: program row of %d words at 0x%08X", len(words), addr)

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, pic32.PERowProgram<<16|uint32(len(words)), false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, addr, false); err != nil {
		return err
	}
	for i, word := range words {
		if i&7 == 0 {
			if err := a.flush(ctx); err != nil {
				return err
			}
		}
		if _, err := a.xferFastData(ctx, word, false); err != nil {
			return err
		}
		a.reportProgress(PhaseProgramming, i+1, len(words))
	}
	if err := a.flush(ctx); err != nil {
		return err
	}
	return a.checkPEEcho(ctx, "row program", pic32.PERowProgram)
}

// VerifyData asks the executive for a CRC over nwords at addr and
// compares it against the CRC of data.
//
// A CRC mismatch returns a *VerificationError, which callers may treat
// as non-fatal: the session remains usable.
func (a *Adapter) VerifyData(ctx context.Context, addr uint32, data []uint32) error {
	if !a.useExecutive {
		return &UnsupportedOperationError{Op: "verify without the executive", Family: a.cfg.family}
	}

	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, pic32.PEGetCRC<<16, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, addr, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, uint32(len(data))*4, false); err != nil {
		return err
	}
	if err := a.checkPEEcho(ctx, "verify", pic32.PEGetCRC); err != nil {
		return err
	}

	response, err := a.getPEResponse(ctx)
	if err != nil {
		return err
	}
	flashCRC := uint16(response & 0xFFFF)

	buf := make([]byte, len(data)*4)
	for i, word := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], word)
	}
	dataCRC := protocol.CRC16(protocol.CRC16InitialValue, buf)

	if flashCRC != dataCRC {
		a.cfg.logger.Warnf("adapter: checksum failed at 0x%08X: sum=0x%04X, expected=0x%04X",
			addr, flashCRC, dataCRC)
		return &VerificationError{Addr: addr, Got: flashCRC, Want: dataCRC}
	}
	return nil
}

// checkPEEcho reads one PE response and verifies it echoes the opcode.
func (a *Adapter) checkPEEcho(ctx context.Context, op string, opcode uint16) error {
	response, err := a.getPEResponse(ctx)
	if err != nil {
		return err
	}
	if response != uint32(opcode)<<16 {
		return &PEResponseError{Op: op, Opcode: opcode, Response: response}
	}
	return nil
}
