package protocol

import "math/bits"

// Checksum8 computes the 8-bit packet checksum: the sum of the payload
// bytes modulo 256. It trails every outbound packet. Replies are not
// checksummed; the adapter strips framing device-side.
func Checksum8(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// crc16Table is the nibble-at-a-time CRC16 table the programming
// executive uses for flash verification. Host and device must agree
// bit-for-bit.
var crc16Table = [16]uint16{
	0x0000, 0x1021, 0x2042, 0x3063, 0x4084, 0x50a5, 0x60c6, 0x70e7,
	0x8108, 0x9129, 0xa14a, 0xb16b, 0xc18c, 0xd1ad, 0xe1ce, 0xf1ef,
}

// CRC16InitialValue is the initial CRC value for flash verification.
const CRC16InitialValue = 0xFFFF

// CRC16 updates crc over data, processing a nibble at a time, and
// returns the new 16-bit value. Start with CRC16InitialValue to match
// the checksum the programming executive computes on-device.
func CRC16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		i := (crc >> 12) ^ uint16(b>>4)
		crc = crc16Table[i&0x0F] ^ (crc << 4)
		i = (crc >> 12) ^ uint16(b)
		crc = crc16Table[i&0x0F] ^ (crc << 4)
	}
	return crc
}

// Reverse32 reverses the bit order of a 32-bit word. JTAG shifts data
// LSB first, so values keyed for MSB-first transmission (the ICSP
// "MCHP" entry code) are bit-reversed before being sent.
func Reverse32(x uint32) uint32 {
	return bits.Reverse32(x)
}
