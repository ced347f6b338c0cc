package protocol

import (
	"encoding/binary"
	"fmt"
)

// Packet accumulates encoded commands for one write to the adapter.
// Multiple commands may share a packet; the adapter executes them in
// order. All appends are capacity-checked against MaxPacketSize.
//
// Packet structure:
//
//	[SYNC][LEN_L][LEN_H][PAYLOAD...][CHECKSUM]
//
// Where:
//   - SYNC = PacketSync (0x70)
//   - LEN = 16-bit count of bytes after the length field, i.e.
//     payload plus checksum (little-endian)
//   - CHECKSUM = 8-bit sum of the payload bytes
type Packet struct {
	buf []byte
}

// NewPacket returns an empty packet builder.
func NewPacket() *Packet {
	return &Packet{}
}

// Len returns the number of bytes currently buffered, header included.
// A fresh or reset packet reports zero.
func (p *Packet) Len() int {
	return len(p.buf)
}

// Add appends an encoded command payload, opening the packet header if
// the buffer is empty. Returns an error if the payload would overflow
// the adapter's receive buffer.
func (p *Packet) Add(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload cannot be empty")
	}
	if len(p.buf) == 0 {
		p.buf = append(p.buf, PacketSync, 0, 0) // length patched in Finalize
	}
	if len(p.buf)+len(payload)+ChecksumSize > MaxPacketSize {
		return fmt.Errorf("packet overflow: %d+%d bytes exceeds maximum %d",
			len(p.buf), len(payload)+ChecksumSize, MaxPacketSize)
	}
	p.buf = append(p.buf, payload...)
	return nil
}

// Finalize appends the payload checksum, patches the length field and
// returns the wire-ready packet. The returned slice aliases the
// builder's buffer and is valid until the next Add or Reset.
// Finalizing an empty packet returns nil.
func (p *Packet) Finalize() []byte {
	if len(p.buf) == 0 {
		return nil
	}
	p.buf = append(p.buf, Checksum8(p.buf[HeaderSize:]))

	// Length counts everything after the length field: payload + checksum.
	binary.LittleEndian.PutUint16(p.buf[1:3], uint16(len(p.buf)-HeaderSize))
	return p.buf
}

// Reset discards all buffered bytes.
func (p *Packet) Reset() {
	p.buf = p.buf[:0]
}

// ParsePacket validates a finalized packet and returns its payload.
// Used by tests and mock devices; the real adapter firmware performs
// the equivalent validation device-side.
func ParsePacket(frame []byte) ([]byte, error) {
	if len(frame) < HeaderSize+ChecksumSize {
		return nil, fmt.Errorf("packet too short: got %d bytes, minimum is %d",
			len(frame), HeaderSize+ChecksumSize)
	}
	if frame[0] != PacketSync {
		return nil, fmt.Errorf("invalid sync byte: got 0x%02X, expected 0x%02X",
			frame[0], PacketSync)
	}
	length := binary.LittleEndian.Uint16(frame[1:3])
	if int(length) != len(frame)-HeaderSize {
		return nil, fmt.Errorf("length mismatch: field says %d, packet has %d bytes after header",
			length, len(frame)-HeaderSize)
	}
	payload := frame[HeaderSize : len(frame)-ChecksumSize]
	sum := Checksum8(payload)
	if sum != frame[len(frame)-1] {
		return nil, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X",
			frame[len(frame)-1], sum)
	}
	return payload, nil
}
