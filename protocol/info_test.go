package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func infoBlock(text string) []byte {
	block := make([]byte, InfoReplySize)
	copy(block, text)
	return block
}

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name    string
		block   []byte
		want    *Info
		wantErr bool
	}{
		{
			name:  "full block",
			block: infoBlock("INFO\nMCU: STM32F042\nMODE: full\nNAME: neofoxx-probe\nFW: 1.2\nHW: rev-b\n"),
			want: &Info{
				MCU:             "STM32F042",
				Mode:            "full",
				Name:            "neofoxx-probe",
				FirmwareVersion: "1.2",
				HardwareVersion: "rev-b",
			},
		},
		{
			name:  "minimal block",
			block: infoBlock("INFO\nMCU: PIC24FJ\n"),
			want:  &Info{MCU: "PIC24FJ"},
		},
		{
			name:  "unknown keys ignored",
			block: infoBlock("INFO\nMCU: X\nLED: blue\nNAME: probe\n"),
			want:  &Info{MCU: "X", Name: "probe"},
		},
		{
			name:  "CRLF line endings",
			block: infoBlock("INFO\r\nMCU: X\r\nMODE: limited\r\n"),
			want:  &Info{MCU: "X", Mode: "limited"},
		},
		{
			name:    "missing MCU",
			block:   infoBlock("INFO\nNAME: probe\n"),
			wantErr: true,
		},
		{
			name:    "empty block",
			block:   make([]byte, InfoReplySize),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInfo(tt.block)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseInfo() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInfo() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInfo() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInfoOversizeValue(t *testing.T) {
	// A value running to the end of the block without a newline must
	// not lose data or read out of bounds.
	text := "INFO\nMCU: "
	block := make([]byte, InfoReplySize)
	copy(block, text)
	for i := len(text); i < InfoReplySize; i++ {
		block[i] = 'A'
	}
	got, err := ParseInfo(block)
	if err != nil {
		t.Fatalf("ParseInfo() error: %v", err)
	}
	if len(got.MCU) != InfoReplySize-len(text) {
		t.Errorf("MCU length = %d, want %d", len(got.MCU), InfoReplySize-len(text))
	}
}
