package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeGetInfoCmd encodes a Get Info command.
// The adapter replies with a fixed InfoReplySize text block; see ParseInfo.
//
// Layout:
//
//	[CMD]
func EncodeGetInfoCmd() []byte {
	return []byte{CmdGetInfo}
}

// EncodeSetSpeedCmd encodes a Set Speed command.
//
// Layout:
//
//	[CMD][KHZ(4)]
func EncodeSetSpeedCmd(khz uint32) []byte {
	cmd := make([]byte, 0, 5)
	cmd = append(cmd, CmdSetSpeed)
	cmd = binary.LittleEndian.AppendUint32(cmd, khz)
	return cmd
}

// EncodeSetProgModeCmd encodes a Set Programming Mode command.
// The mode must be one of ProgModeTristate, ProgModeJTAG, ProgModeICSP.
//
// Layout:
//
//	[CMD][MODE]
func EncodeSetProgModeCmd(mode byte) ([]byte, error) {
	if mode != ProgModeTristate && mode != ProgModeJTAG && mode != ProgModeICSP {
		return nil, fmt.Errorf("invalid programming mode 0x%02X", mode)
	}
	return []byte{CmdSetProgMode, mode}, nil
}

// EncodeSetPinCmd encodes a Set Pin IO Mode command for a single pin.
// The state must be one of PinOutputLow, PinOutputHigh, PinInput.
//
// Layout:
//
//	[CMD][PIN][STATE]
func EncodeSetPinCmd(pin, state byte) ([]byte, error) {
	if pin > PinMCLR {
		return nil, fmt.Errorf("invalid pin 0x%02X", pin)
	}
	if state != PinOutputLow && state != PinOutputHigh && state != PinInput {
		return nil, fmt.Errorf("invalid pin state 0x%02X", state)
	}
	return []byte{CmdSetPinIOMode, pin, state}, nil
}

// EncodePinWriteCmd encodes a Pin Write command.
// The pin must already be configured as an output.
//
// Layout:
//
//	[CMD][PIN][LEVEL]
func EncodePinWriteCmd(pin byte, high bool) ([]byte, error) {
	if pin > PinMCLR {
		return nil, fmt.Errorf("invalid pin 0x%02X", pin)
	}
	level := byte(0)
	if high {
		level = 1
	}
	return []byte{CmdSetPinWrite, pin, level}, nil
}

// EncodePinReadCmd encodes a Pin Read command.
//
// Layout:
//
//	[CMD][PIN]
func EncodePinReadCmd(pin byte) ([]byte, error) {
	if pin > PinMCLR {
		return nil, fmt.Errorf("invalid pin 0x%02X", pin)
	}
	return []byte{CmdSetPinRead, pin}, nil
}

// EncodeSendCmd encodes a Send command: a TMS prolog, up to MaxTDIBits
// of TDI data, a TMS epilog and a read flag. When the read flag is set
// the adapter replies with SendReplySize bytes of captured TDO data.
//
// Layout (all fields little-endian):
//
//	[CMD][TMS_PROLOG_NBITS(4)][TMS_PROLOG(4)][TDI_NBITS(4)][TDI(8)]
//	[TMS_EPILOG_NBITS(4)][TMS_EPILOG(4)][READ_FLAG(4)]
func EncodeSendCmd(tmsPrologNbits, tmsProlog uint32, tdiNbits uint32, tdi uint64,
	tmsEpilogNbits, tmsEpilog uint32, read bool) ([]byte, error) {

	if tdiNbits > MaxTDIBits {
		return nil, fmt.Errorf("TDI width %d exceeds maximum %d bits", tdiNbits, MaxTDIBits)
	}
	if tmsPrologNbits > 32 || tmsEpilogNbits > 32 {
		return nil, fmt.Errorf("TMS width exceeds 32 bits: prolog %d, epilog %d",
			tmsPrologNbits, tmsEpilogNbits)
	}

	readFlag := uint32(0)
	if read {
		readFlag = 1
	}

	cmd := make([]byte, 0, 33)
	cmd = append(cmd, CmdSend)
	cmd = binary.LittleEndian.AppendUint32(cmd, tmsPrologNbits)
	cmd = binary.LittleEndian.AppendUint32(cmd, tmsProlog)
	cmd = binary.LittleEndian.AppendUint32(cmd, tdiNbits)
	cmd = binary.LittleEndian.AppendUint64(cmd, tdi)
	cmd = binary.LittleEndian.AppendUint32(cmd, tmsEpilogNbits)
	cmd = binary.LittleEndian.AppendUint32(cmd, tmsEpilog)
	cmd = binary.LittleEndian.AppendUint32(cmd, readFlag)
	return cmd, nil
}

// EncodeXferInstructionCmd encodes an Xfer Instruction command. The
// adapter performs the full EJTAG instruction handshake itself and
// replies with InstructionReplySize status bytes.
//
// Layout:
//
//	[CMD][INSTRUCTION(4)]
func EncodeXferInstructionCmd(instruction uint32) []byte {
	cmd := make([]byte, 0, 5)
	cmd = append(cmd, CmdXferInstruction)
	cmd = binary.LittleEndian.AppendUint32(cmd, instruction)
	return cmd
}
