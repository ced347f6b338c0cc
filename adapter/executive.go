package adapter

import (
	"context"
	"time"

	"github.com/moffa90/go-pic32/pic32"
)

// LoadExecutive injects the stub loader into target RAM, streams the
// programming executive image through the FASTDATA register, jumps to
// it and verifies the version it reports. pe is the executive image as
// 32-bit words; version is the family's expected PE version number.
//
// Once loaded, the bulk flash operations (ReadData bursts, the
// Program* family, VerifyData) run through the executive.
func (a *Adapter) LoadExecutive(ctx context.Context, pe []uint32, version uint16) error {
	if err := a.serialExecution(ctx); err != nil {
		return err
	}
	a.cfg.logger.Debugf("adapter: loading executive, %d words", len(pe))

	var base uint32
	if a.cfg.family.HasBusMatrix() {
		base = pic32.ExecutiveBase
		if err := a.injectLoader(ctx); err != nil {
			return err
		}
	} else {
		base = pic32.ExecutiveBaseMM
		if err := a.injectLoaderMM(ctx); err != nil {
			return err
		}
	}

	if err := a.sendCommand(ctx, pic32.TapSwitchETAP, true); err != nil {
		return err
	}
	if err := a.setMode(ctx, modeTapReset, true); err != nil {
		return err
	}
	if err := a.sendCommand(ctx, pic32.ETAPFastData, true); err != nil {
		return err
	}

	// Destination address and word count, then the image itself. Each
	// FASTDATA word is handshaked, so the stub loader consumes them as
	// fast as they arrive.
	if _, err := a.xferFastData(ctx, base, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, uint32(len(pe)), false); err != nil {
		return err
	}
	for i, word := range pe {
		if _, err := a.xferFastData(ctx, word, false); err != nil {
			return err
		}
		a.reportProgress(PhaseLoading, i+1, len(pe))
	}
	if err := a.flush(ctx); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}

	// A zero-length trailer with the jump sentinel as its address makes
	// the stub loader branch to the executive's entry point.
	if _, err := a.xferFastData(ctx, 0, false); err != nil {
		return err
	}
	if _, err := a.xferFastData(ctx, pic32.JumpSentinel, false); err != nil {
		return err
	}
	if err := a.cfg.sleep(ctx, 10*time.Millisecond); err != nil {
		return &TransportError{Op: "wait", Err: err}
	}

	if _, err := a.xferFastData(ctx, pic32.PEExecVersion<<16, false); err != nil {
		return err
	}
	got, err := a.getPEResponse(ctx)
	if err != nil {
		return err
	}
	want := uint32(pic32.PEExecVersion)<<16 | uint32(version)
	if got != want {
		return &PEVersionError{Got: got, Want: want}
	}
	a.useExecutive = true
	a.cfg.logger.Infof("adapter: executive version 0x%04X", got&0xFFFF)
	return nil
}

// injectLoader places the stub loader at its RAM base on families with
// a bus matrix (MX/MK/MZ): first a register window that opens kernel
// RAM for execution, then the loader halfwords themselves, then a jump
// into the loader.
func (a *Adapter) injectLoader(ctx context.Context) error {
	busMatrix := []uint32{
		0x3c04bf88, // lui a0, 0xbf88
		0x34842000, // ori a0, 0x2000  - address of BMXCON
		0x3c05001f, // lui a1, 0x1f
		0x34a50040, // ori a1, 0x40    - a1 has 001f0040
		0xac850000, // sw  a1, 0(a0)   - BMXCON initialized

		0x34050800, // li  a1, 0x800   - a1 has 00000800
		0xac850010, // sw  a1, 16(a0)  - BMXDKPBA initialized

		0x8c850040, // lw  a1, 64(a0)  - load BMXDMSZ
		0xac850020, // sw  a1, 32(a0)  - BMXDUDBA initialized
		0xac850030, // sw  a1, 48(a0)  - BMXDUPBA initialized

		0x3c04a000, // lui a0, 0xa000
		0x34840800, // ori a0, 0x800   - a0 has a0000800
	}
	for _, instr := range busMatrix {
		if err := a.xferInstruction(ctx, instr); err != nil {
			return err
		}
	}

	stub := pic32.LoaderStub
	for i := 0; i+1 < len(stub); i += 2 {
		if err := a.xferInstruction(ctx, 0x3c060000|uint32(stub[i])); err != nil {
			return err
		}
		if err := a.xferInstruction(ctx, 0x34c60000|uint32(stub[i+1])); err != nil {
			return err
		}
		if err := a.xferInstruction(ctx, 0xac860000); err != nil { // sw a2, 0(a0)
			return err
		}
		if err := a.xferInstruction(ctx, 0x24840004); err != nil { // addiu a0, 4
			return err
		}
	}

	jump := []uint32{
		0x3c19a000, // lui t9, 0xa000
		0x37390800, // ori t9, 0x800  - t9 has a0000800
		0x03200008, // jr  t9
		0x00000000, // nop
	}
	for _, instr := range jump {
		if err := a.xferInstruction(ctx, instr); err != nil {
			return err
		}
	}
	return nil
}

// injectLoaderMM places the stub loader on the MM family, whose core
// executes microMIPS and needs no bus matrix setup.
func (a *Adapter) injectLoaderMM(ctx context.Context) error {
	if err := a.xferInstruction(ctx, 0xa00041a4); err != nil { // lui a0, 0xa000
		return err
	}
	if err := a.xferInstruction(ctx, 0x02005084); err != nil { // ori a0, 0x200
		return err
	}

	stub := pic32.LoaderStubMM
	for i := 0; i+1 < len(stub); i += 2 {
		if err := a.xferInstruction(ctx, 0x41A6|uint32(stub[i])<<16); err != nil {
			return err
		}
		if err := a.xferInstruction(ctx, 0x50C6|uint32(stub[i+1])<<16); err != nil {
			return err
		}
		if err := a.xferInstruction(ctx, 0x6E42EB40); err != nil { // sw a2, 0(a0); addiu a0, 4
			return err
		}
	}

	jump := []uint32{
		0xA00041B9, // lui t9, 0xa000
		0x02015339, // ori t9 - loader address with the ISA bit set
		0x0C004599, // jr  t9
		0x0C000C00, // nop
		0x0C000C00, // nop
	}
	for _, instr := range jump {
		if err := a.xferInstruction(ctx, instr); err != nil {
			return err
		}
	}
	return nil
}
