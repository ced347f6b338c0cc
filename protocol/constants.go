package protocol

// Packet structure constants.
const (
	// PacketSync is the packet start marker ('p')
	PacketSync = 0x70

	// HeaderSize is the packet header size in bytes: SYNC(1) + LEN(2)
	HeaderSize = 3

	// ChecksumSize is the trailing checksum size in bytes
	ChecksumSize = 1

	// MaxPacketSize is the adapter firmware's receive buffer size.
	// A packet, including header and checksum, must never exceed it.
	MaxPacketSize = 2048
)

// Command codes understood by the adapter firmware.
// Each command has a fixed argument layout; see the Encode* functions.
const (
	// CmdGetInfo requests the adapter capability text block
	CmdGetInfo = 0x00

	// CmdSetSpeed sets the TCK clock rate in kHz
	CmdSetSpeed = 0x01

	// CmdSetProgMode drives the programming pins into a preset state
	CmdSetProgMode = 0x02

	// CmdSetPinIOMode controls a single pin's direction and level
	CmdSetPinIOMode = 0x03

	// CmdSetPinWrite writes a level to a pin already configured as output
	CmdSetPinWrite = 0x04

	// CmdSetPinRead samples a pin configured as input
	CmdSetPinRead = 0x05

	// CmdSend shifts a TMS prolog, TDI data and a TMS epilog through the TAP
	CmdSend = 0x06

	// CmdXferInstruction executes one EJTAG instruction transfer on the
	// adapter itself (pipelined mode; 4-byte status reply)
	CmdXferInstruction = 0x07
)

// Programming pin presets for CmdSetProgMode.
const (
	// ProgModeTristate releases all programming pins
	ProgModeTristate = 0x00

	// ProgModeJTAG drives the 4-wire JTAG pin configuration
	ProgModeJTAG = 0x01

	// ProgModeICSP drives the 2-wire ICSP pin configuration
	ProgModeICSP = 0x02
)

// Pin identifiers for the pin control commands.
const (
	PinTMS  = 0x00
	PinTCK  = 0x01
	PinTDI  = 0x02
	PinTDO  = 0x03
	PinMCLR = 0x04
)

// Pin states for CmdSetPinIOMode.
const (
	// PinOutputLow configures the pin as an output driven low
	PinOutputLow = 0x00

	// PinOutputHigh configures the pin as an output driven high
	PinOutputHigh = 0x01

	// PinInput configures the pin as a high-impedance input
	PinInput = 0x02
)

// Reply sizes. Replies carry no framing: the adapter validates and
// strips packet structure device-side and returns raw payload bytes.
const (
	// SendReplySize is the reply size for a read-flagged CmdSend
	// (one 64-bit little-endian word)
	SendReplySize = 8

	// InstructionReplySize is the reply size for CmdXferInstruction
	// (32-bit status word: zero on success, MSB set on failure)
	InstructionReplySize = 4

	// InfoReplySize is the fixed reply size for CmdGetInfo
	InfoReplySize = 128
)

// MaxTDIBits is the widest TDI field a single CmdSend can shift.
const MaxTDIBits = 64
