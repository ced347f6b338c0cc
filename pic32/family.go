package pic32

// Family identifies a PIC32 device family. The family decides which
// instruction sequences the bootstrap injects, which programming
// executive opcodes are available and where the executive loads.
type Family int

const (
	// FamilyMX1 covers PIC32MX1xx/2xx devices
	FamilyMX1 Family = iota

	// FamilyMX3 covers PIC32MX3xx..7xx devices
	FamilyMX3

	// FamilyMK covers PIC32MK devices
	FamilyMK

	// FamilyMZ covers PIC32MZ devices
	FamilyMZ

	// FamilyMM covers PIC32MM (microMIPS-only) devices
	FamilyMM
)

func (f Family) String() string {
	switch f {
	case FamilyMX1:
		return "MX1"
	case FamilyMX3:
		return "MX3"
	case FamilyMK:
		return "MK"
	case FamilyMZ:
		return "MZ"
	case FamilyMM:
		return "MM"
	default:
		return "<unknown>"
	}
}

// Valid reports whether f names a known family.
func (f Family) Valid() bool {
	return f >= FamilyMX1 && f <= FamilyMM
}

// HasBusMatrix reports whether the executive bootstrap must configure
// the bus matrix (BMX) before loading the stub. The MM family maps RAM
// differently and skips this step.
func (f Family) HasBusMatrix() bool {
	return f != FamilyMM
}

// SupportsWordProgram reports whether the PE accepts WORD_PROGRAM.
// The MM family's flash writes in double-word units only.
func (f Family) SupportsWordProgram() bool {
	return f != FamilyMM
}

// SupportsDoubleWordProgram reports whether the PE accepts
// DOUBLE_WORD_PROGRAM (MM family only).
func (f Family) SupportsDoubleWordProgram() bool {
	return f == FamilyMM
}

// SupportsQuadWordProgram reports whether the PE accepts
// QUAD_WORD_PROGRAM (MK and MZ families only).
func (f Family) SupportsQuadWordProgram() bool {
	return f == FamilyMK || f == FamilyMZ
}

// SharesICSPPins reports whether the family multiplexes the ICSP and
// JTAG signals on the same pins. Only such devices can be recovered
// from a failed serial-execution entry by forcing an ICSP sync over
// the TMS line; others need a power cycle.
func (f Family) SharesICSPPins() bool {
	return f == FamilyMX1 || f == FamilyMX3
}
