// Package adapter implements PIC32 device programming over the
// packet-based adapter protocol.
//
// A session drives three layers through a single Transport:
//
//   - the framed command packets of package protocol, batched and
//     flushed so that many bit-level operations travel in one frame,
//   - the JTAG/EJTAG layer: TAP state control, MTAP and ETAP commands,
//     data register shifts and CPU instruction injection,
//   - the programming executive (PE): a helper program bootstrapped
//     into target RAM that performs fast flash reads, writes and CRC
//     verification.
//
// A typical programming session:
//
//	port, err := serialport.Open("/dev/ttyACM0", 115200)
//	if err != nil {
//		log.Fatal(err)
//	}
//	a, err := adapter.Open(ctx, port,
//		adapter.WithFamily(pic32.FamilyMX3),
//		adapter.WithInterface(adapter.InterfaceJTAG))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close(ctx)
//
//	if err := a.EraseChip(ctx); err != nil {
//		log.Fatal(err)
//	}
//	if err := a.LoadExecutive(ctx, peImage, peVersion); err != nil {
//		log.Fatal(err)
//	}
//	if err := a.ProgramRow(ctx, 0x1D000000, row); err != nil {
//		log.Fatal(err)
//	}
//	err = a.VerifyData(ctx, 0x1D000000, row)
//
// All errors are typed. Every error aborts the operation that caused
// it except *VerificationError, which reports a flash CRC mismatch and
// leaves the session usable.
package adapter
