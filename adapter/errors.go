package adapter

import (
	"fmt"

	"github.com/moffa90/go-pic32/pic32"
)

// TransportError indicates a failure of the underlying byte transport.
type TransportError struct {
	// Op is the transport operation that failed
	Op string

	// Err is the underlying transport error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SyncError indicates that no Microchip device answered on the scan
// chain: the IDCODE's vendor field stayed wrong through the bounded
// open-time retry loop.
type SyncError struct {
	// IDCode is the last IDCODE value read
	IDCode uint32
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("no Microchip device detected: IDCODE=0x%08X (vendor field 0x%03X, want 0x%03X)",
		e.IDCode, e.IDCode&pic32.IDCodeVendorMask, pic32.IDCodeMicrochip)
}

// StatusError indicates an unusable MCHP status register at open time
// (configuration not ready or flash controller stuck busy).
type StatusError struct {
	// Status is the offending MCHP status value
	Status uint32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid device status 0x%04X: need CFGRDY set and FCBUSY clear", e.Status)
}

// CodeProtectError indicates the device's flash configuration is
// unreadable because code protection is enabled. The part must be
// erased before it can be reprogrammed.
type CodeProtectError struct {
	// Status is the MCHP status value with the CPS bit clear
	Status uint32
}

func (e *CodeProtectError) Error() string {
	return fmt.Sprintf("code protection enabled (status 0x%08X): erase the device first", e.Status)
}

// ExecutionError indicates the CPU's debug logic never became ready:
// the polled EJTAG control register did not report the expected bit
// within the retry budget.
type ExecutionError struct {
	// Op is the operation that was polling
	Op string

	// Control is the last EJTAG control register value observed
	Control uint32
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: processor not ready, control=0x%08X", e.Op, e.Control)
}

// BootstrapError indicates serial-execution entry failed after all
// outer attempts and any family-specific recovery. Devices without
// shared ICSP/JTAG pins can only be recovered by a power cycle.
type BootstrapError struct {
	// Attempts is the number of entry attempts made
	Attempts int

	// Control is the last EJTAG control register value observed
	Control uint32

	// Recoverable reports whether automatic recovery was attempted
	Recoverable bool
}

func (e *BootstrapError) Error() string {
	if !e.Recoverable {
		return fmt.Sprintf("failed to enter serial execution after %d attempts (control=0x%08X): power-cycle the target or reset it via ICSP",
			e.Attempts, e.Control)
	}
	return fmt.Sprintf("failed to enter serial execution after %d attempts (control=0x%08X)",
		e.Attempts, e.Control)
}

// PEVersionError indicates the loaded programming executive identified
// itself with an unexpected version word.
type PEVersionError struct {
	Got  uint32
	Want uint32
}

func (e *PEVersionError) Error() string {
	return fmt.Sprintf("bad PE version 0x%08X, expected 0x%08X", e.Got, e.Want)
}

// PEResponseError indicates a programming executive response whose
// high 16 bits did not echo the request opcode.
type PEResponseError struct {
	// Op is the flash operation in progress
	Op string

	// Opcode is the PE opcode that was issued
	Opcode uint16

	// Response is the full 32-bit response received
	Response uint32
}

func (e *PEResponseError) Error() string {
	return fmt.Sprintf("%s: bad PE response 0x%08X, expected echo of opcode 0x%04X",
		e.Op, e.Response, e.Opcode)
}

// UnsupportedOperationError indicates an operation that is invalid for
// the session's device family or current state.
type UnsupportedOperationError struct {
	// Op describes the rejected operation
	Op string

	// Family is the session's device family
	Family pic32.Family
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported on the %s family", e.Op, e.Family)
}

// VerificationError indicates the device-computed flash CRC did not
// match the host-computed CRC of the expected data.
//
// This is the one explicitly non-fatal failure: the link is healthy
// and the mismatch concerns the caller's data, so callers may log it
// and continue where every other error should abort.
type VerificationError struct {
	// Addr is the start address of the verified range
	Addr uint32

	// Got is the CRC the programming executive reported
	Got uint16

	// Want is the CRC computed over the expected data
	Want uint16
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed at 0x%08X: device CRC 0x%04X, expected 0x%04X",
		e.Addr, e.Got, e.Want)
}
