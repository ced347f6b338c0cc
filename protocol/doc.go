// Package protocol implements the host side of the USB-serial JTAG
// adapter's packet protocol.
//
// # Protocol Overview
//
// Commands travel to the adapter inside checksummed packets:
//
//	Packet: [SYNC][LEN_L][LEN_H][PAYLOAD...][CHECKSUM]
//
// Where:
//   - SYNC = PacketSync (0x70)
//   - LEN = 16-bit count of bytes after the length field (little-endian)
//   - PAYLOAD = one or more encoded commands, executed in order
//   - CHECKSUM = 8-bit sum of the payload bytes
//
// Replies carry no framing. The adapter validates and strips packet
// structure device-side and answers with raw fixed-length payloads:
// 8 bytes per read-flagged Send, 4 bytes per Xfer Instruction, and a
// 128-byte text block for Get Info. The host must therefore know the
// exact reply length of everything it has queued before it flushes.
//
// # Command Encoders
//
// Use the Encode* functions to build command payloads and a Packet to
// frame them:
//
//	pkt := protocol.NewPacket()
//	cmd, err := protocol.EncodeSendCmd(6, 0x1F, 0, 0, 0, 0, false)
//	err = pkt.Add(cmd)
//	frame := pkt.Finalize()
//
// # Checksums
//
// Checksum8 is the packet trailer. CRC16 is unrelated to packet
// integrity: it is the nibble-table checksum the programming executive
// computes over flash ranges, reproduced here so the host can verify
// programmed data against the device's answer.
package protocol
