package pic32

// TAP instruction opcodes, shifted into the 5-bit command register.
//
// The MTAP set controls Microchip's flash and configuration logic;
// the ETAP set controls the MIPS EJTAG debug logic. TapSwitchMTAP and
// TapSwitchETAP select which TAP answers subsequent commands.
const (
	MTAPIdcode    = 0x01
	TapSwitchMTAP = 0x04
	TapSwitchETAP = 0x05
	MTAPCommand   = 0x07

	ETAPAddress    = 0x08
	ETAPData       = 0x09
	ETAPControl    = 0x0A
	ETAPEjtagBoot  = 0x0C
	ETAPNormalBoot = 0x0D
	ETAPFastData   = 0x0E
)

// Command register widths in bits.
const (
	// CommandNbits is the width of the MTAP/ETAP command register
	CommandNbits = 5

	// MTAPCommandDRNbits is the width of the MTAP command data register
	MTAPCommandDRNbits = 8
)

// MTAP command data register values (MCHP commands).
const (
	// MCHPStatus reads the device status register
	MCHPStatus = 0x00

	// MCHPAssertRst holds the device in reset (ICSP mode)
	MCHPAssertRst = 0xD1

	// MCHPDeassertRst releases the device from reset (ICSP mode)
	MCHPDeassertRst = 0xD0

	// MCHPErase triggers a full chip erase
	MCHPErase = 0xFC

	// MCHPFlashEnable enables flash memory access
	MCHPFlashEnable = 0xFE

	// MCHPFlashDisable disables flash memory access
	MCHPFlashDisable = 0xFD
)

// MCHPStatus register bits.
const (
	// StatusDevRst indicates the device is held in reset
	StatusDevRst = 0x01

	// StatusFAEn indicates flash access is enabled
	StatusFAEn = 0x02

	// StatusFCBusy indicates the flash controller is busy
	StatusFCBusy = 0x04

	// StatusCfgRdy indicates the configuration is readable
	StatusCfgRdy = 0x08

	// StatusNVMErr indicates an NVM programming error
	StatusNVMErr = 0x20

	// StatusCPS reads one when code protection is disabled; a device
	// reading zero must be erased before it can be programmed
	StatusCPS = 0x80
)

// EJTAG control register bits.
const (
	// ControlEjtagBrk requests a debug exception on the next clock
	ControlEjtagBrk = 1 << 12

	// ControlProbTrap traps debug exceptions to the probe's vector
	ControlProbTrap = 1 << 14

	// ControlProbEn enables the debug probe
	ControlProbEn = 1 << 15

	// ControlPrAcc signals a pending processor access
	ControlPrAcc = 1 << 18

	// ControlPrNW distinguishes processor access writes from reads
	ControlPrNW = 1 << 19
)

// Programming executive command opcodes, packed into the high 16 bits
// of the first FASTDATA word of each request. Every response echoes
// the opcode in its high 16 bits.
const (
	PERead             = 0x01
	PEProgram          = 0x02
	PEWordProgram      = 0x03
	PEChipErase        = 0x04
	PEPageErase        = 0x05
	PERowProgram       = 0x06
	PEExecVersion      = 0x07
	PEGetCRC           = 0x08
	PEProgramCluster   = 0x09
	PEGetDeviceID      = 0x0A
	PEChangeCfg        = 0x0B
	PEQuadWordProgram  = 0x0D
	PEDoubleWordProgram = 0x0E
)

// PEReadBurstWords is the number of words one PE READ request returns.
const PEReadBurstWords = 32

// Memory map addresses used by the executive bootstrap.
const (
	// FastDataRegAddr is the virtual address of the EJTAG FASTDATA register
	FastDataRegAddr = 0xFF200000

	// LoaderBase is the RAM address the stub loader is injected at
	// (MX/MK/MZ families)
	LoaderBase = 0xA0000800

	// ExecutiveBase is the RAM address the stub loader copies the PE to
	// (MX/MK/MZ families)
	ExecutiveBase = 0xA0000900

	// LoaderBaseMM is the stub loader address on the MM family
	LoaderBaseMM = 0xA0000200

	// ExecutiveBaseMM is the PE address on the MM family
	ExecutiveBaseMM = 0xA0000300
)

// JumpSentinel is the word streamed after the PE image to make the stub
// loader branch to the freshly loaded executive.
const JumpSentinel = 0xDEAD0000

// IDCodeVendorMask and IDCodeMicrochip identify the manufacturer field
// of the JTAG IDCODE register (low 12 bits).
const (
	IDCodeVendorMask = 0xFFF
	IDCodeMicrochip  = 0x053
)
