package pic32

// LoaderStub is the stub loader for the MX/MK/MZ families, stored as
// high/low halfword pairs of each MIPS32 instruction. The bootstrap
// assembles every pair with a lui/ori sequence and stores the result
// word to an incrementing RAM pointer.
//
// The stub sits at LoaderBase, copies the executive streamed over
// FASTDATA to ExecutiveBase and jumps to it when the JumpSentinel
// arrives.
var LoaderStub = []uint16{
	0x3c07, 0xdead, // lui a3, 0xdead
	0x3c06, 0xff20, // lui a2, 0xff20
	0x3c05, 0xff20, // lui a1, 0xff20
	// L1:
	0x8cc4, 0x0000, // lw a0, 0(a2)
	0x8cc3, 0x0000, // lw v1, 0(a2)
	0x1067, 0x000b, // beq v1, a3, L3
	0x0000, 0x0000, // nop
	0x1060, 0xfffb, // beqz v1, L1
	0x0000, 0x0000, // nop
	// L2:
	0x8ca2, 0x0000, // lw v0, 0(a1)
	0x2463, 0xffff, // addiu v1, -1
	0xac82, 0x0000, // sw v0, 0(a0)
	0x2484, 0x0004, // addiu a0, 4
	0x1460, 0xfffb, // bnez v1, L2
	0x0000, 0x0000, // nop
	0x1000, 0xfff3, // b L1
	0x0000, 0x0000, // nop
	// L3:
	0x3c02, 0xa000, // lui v0, 0xa000
	0x3442, 0x0900, // ori v0, 0x900
	0x0040, 0x0008, // jr v0
	0x0000, 0x0000, // nop
}

// LoaderStubMM is the MM-family (microMIPS) variant of the stub
// loader, in the same high/low halfword pair layout. The bootstrap
// assembles the pairs with microMIPS lui/ori encodings and a fused
// store-and-increment, and the stub copies the executive to
// ExecutiveBaseMM.
var LoaderStubMM = []uint16{
	0x41a7, 0xdead, // lui a3, 0xdead
	0x41a6, 0xff20, // lui a2, 0xff20
	0x41a5, 0xff20, // lui a1, 0xff20
	// L1:
	0xfc86, 0x0000, // lw a0, 0(a2)
	0xfc66, 0x0000, // lw v1, 0(a2)
	0x9467, 0x000b, // beq v1, a3, L3
	0x0c00, 0x0c00, // nop; nop
	0x8c60, 0xfffb, // beqz v1, L1
	0x0c00, 0x0c00, // nop; nop
	// L2:
	0xfc45, 0x0000, // lw v0, 0(a1)
	0x3063, 0xffff, // addiu v1, -1
	0xf844, 0x0000, // sw v0, 0(a0)
	0x3084, 0x0004, // addiu a0, 4
	0xb460, 0xfffb, // bnez v1, L2
	0x0c00, 0x0c00, // nop; nop
	0x9400, 0xfff3, // b L1
	0x0c00, 0x0c00, // nop; nop
	// L3:
	0x41a2, 0xa000, // lui v0, 0xa000
	0x5042, 0x0300, // ori v0, 0x300
	0x4593, 0x0c00, // jr v0; nop
	0x0c00, 0x0c00, // nop; nop
}
