package protocol

import "testing"

func TestChecksum8(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected byte
	}{
		{
			name:     "empty payload",
			payload:  []byte{},
			expected: 0x00,
		},
		{
			name:     "single byte",
			payload:  []byte{0x42},
			expected: 0x42,
		},
		{
			name:     "multiple bytes",
			payload:  []byte{0x01, 0x02, 0x03, 0x04},
			expected: 0x0A,
		},
		{
			name:     "overflow wraps mod 256",
			payload:  []byte{0xFF, 0xFF, 0x03},
			expected: 0x01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum8(tt.payload)
			if result != tt.expected {
				t.Errorf("Checksum8() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data keeps initial value",
			data:     []byte{},
			expected: 0xFFFF,
		},
		{
			name:     "check sequence 123456789",
			data:     []byte("123456789"),
			expected: 0x29B1,
		},
		{
			name:     "all zeros",
			data:     []byte{0x00, 0x00, 0x00, 0x00},
			expected: 0x84C0,
		},
		{
			name:     "word bytes",
			data:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
			expected: 0x4097,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CRC16(CRC16InitialValue, tt.data)
			if result != tt.expected {
				t.Errorf("CRC16() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCRC16Deterministic(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78}
	a := CRC16(CRC16InitialValue, data)
	b := CRC16(CRC16InitialValue, data)
	if a != b {
		t.Fatalf("CRC16 not deterministic: 0x%04X vs 0x%04X", a, b)
	}
	if a != 0x30EC {
		t.Errorf("CRC16() = 0x%04X, want 0x30EC", a)
	}
}

func TestCRC16SingleBitFlip(t *testing.T) {
	base := CRC16(CRC16InitialValue, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	flip := CRC16(CRC16InitialValue, []byte{0xDE, 0xAD, 0xBE, 0xEE})
	if base == flip {
		t.Errorf("single-bit flip did not change CRC: both 0x%04X", base)
	}
	if flip != 0x50B6 {
		t.Errorf("CRC16(flipped) = 0x%04X, want 0x50B6", flip)
	}
}

func TestReverse32Involution(t *testing.T) {
	values := []uint32{0, 1, 0x4D434850, 0x80000001, 0xDEADBEEF, 0xFFFFFFFF}
	for _, v := range values {
		if got := Reverse32(Reverse32(v)); got != v {
			t.Errorf("Reverse32(Reverse32(0x%08X)) = 0x%08X", v, got)
		}
	}
}

func TestReverse32ICSPEntryKey(t *testing.T) {
	// "MCHP" bit-reversed; shifted out 8 bits at a time, low byte first.
	reversed := Reverse32(0x4D434850)
	if reversed != 0x0A12C2B2 {
		t.Fatalf("Reverse32(MCHP) = 0x%08X, want 0x0A12C2B2", reversed)
	}
	bytesOnWire := []byte{
		byte(reversed),
		byte(reversed >> 8),
		byte(reversed >> 16),
		byte(reversed >> 24),
	}
	expected := []byte{0xB2, 0xC2, 0x12, 0x0A}
	for i := range expected {
		if bytesOnWire[i] != expected[i] {
			t.Errorf("entry key byte %d = 0x%02X, want 0x%02X", i, bytesOnWire[i], expected[i])
		}
	}
}
