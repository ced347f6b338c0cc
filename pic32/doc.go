// Package pic32 carries the PIC32 device constant tables: TAP command
// opcodes for the Microchip MTAP and the MIPS EJTAG ETAP, MCHP status
// register bits, EJTAG control register bits, programming executive
// opcodes, per-family capability predicates, and the two stub loader
// images the executive bootstrap injects.
//
// These are data collaborators: the values must match the silicon and
// the programming executive images bit-for-bit, and the package makes
// no protocol decisions of its own.
package pic32
