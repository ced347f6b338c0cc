package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/moffa90/go-pic32/pic32"
)

func TestEraseChipPollsUntilReady(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		0x0C, // CFGRDY | FCBUSY: still erasing
		0x0C,
		0x08, // CFGRDY, controller idle
	}

	var sleeps []time.Duration
	a := newTestAdapter(t, m, WithPollInterval(7*time.Millisecond))
	a.cfg.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	if err := a.EraseChip(context.Background()); err != nil {
		t.Fatalf("EraseChip() error = %v", err)
	}

	pollDelays := 0
	for _, d := range sleeps {
		if d == 7*time.Millisecond {
			pollDelays++
		}
	}
	if pollDelays != 2 {
		t.Errorf("poll delays = %d, want 2", pollDelays)
	}
	if got := len(m.readShifts()); got != 3 {
		t.Errorf("status reads = %d, want 3", got)
	}
}

func TestProgramWord(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		1, 1, 1, // FASTDATA handshakes for opcode, address, word
		ctlReady,
		uint64(pic32.PEWordProgram) << 16, // opcode echo
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	if err := a.ProgramWord(context.Background(), 0x1D001000, 0xCAFEBABE); err != nil {
		t.Fatalf("ProgramWord() error = %v", err)
	}

	// The word travels in the second FASTDATA shift after the opcode,
	// shifted left past the marker bit.
	shifts := m.shifts
	var fast []shift
	for _, s := range shifts {
		if s.tdiNbits == 33 {
			fast = append(fast, s)
		}
	}
	if len(fast) != 3 {
		t.Fatalf("FASTDATA shifts = %d, want 3", len(fast))
	}
	if fast[2].tdi != uint64(0xCAFEBABE)<<1 {
		t.Errorf("word shift TDI = 0x%X, want 0x%X", fast[2].tdi, uint64(0xCAFEBABE)<<1)
	}
}

func TestProgramWordBadEcho(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		1, 1, 1,
		ctlReady,
		0xDEAD0000, // wrong opcode echoed back
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	err := a.ProgramWord(context.Background(), 0x1D001000, 0xCAFEBABE)
	var peErr *PEResponseError
	if !errors.As(err, &peErr) {
		t.Fatalf("ProgramWord() error = %v, want *PEResponseError", err)
	}
	if peErr.Response != 0xDEAD0000 {
		t.Errorf("PEResponseError.Response = 0x%08X, want 0xDEAD0000", peErr.Response)
	}
}

func TestProgramWordFamilyGate(t *testing.T) {
	m := newMockTransport(t)
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMM))
	a.useExecutive = true

	err := a.ProgramWord(context.Background(), 0x1D001000, 0)
	var unsupErr *UnsupportedOperationError
	if !errors.As(err, &unsupErr) {
		t.Fatalf("ProgramWord() on MM error = %v, want *UnsupportedOperationError", err)
	}
	if len(m.frames) != 0 {
		t.Errorf("rejected operation wrote %d frames", len(m.frames))
	}
}

func TestProgramWithoutExecutive(t *testing.T) {
	m := newMockTransport(t)
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))

	err := a.ProgramWord(context.Background(), 0x1D001000, 0)
	var unsupErr *UnsupportedOperationError
	if !errors.As(err, &unsupErr) {
		t.Fatalf("ProgramWord() without PE error = %v, want *UnsupportedOperationError", err)
	}
}

func TestProgramDoubleWordFamilyGate(t *testing.T) {
	m := newMockTransport(t)
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	err := a.ProgramDoubleWord(context.Background(), 0x1D001000, 0, 0)
	var unsupErr *UnsupportedOperationError
	if !errors.As(err, &unsupErr) {
		t.Fatalf("ProgramDoubleWord() on MX3 error = %v, want *UnsupportedOperationError", err)
	}
}

func TestProgramQuadWord(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		1, 1, 1, 1, 1, 1, // opcode, address, four words
		ctlReady,
		uint64(pic32.PEQuadWordProgram) << 16,
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMZ))
	a.useExecutive = true

	if err := a.ProgramQuadWord(context.Background(), 0x1D000000, 1, 2, 3, 4); err != nil {
		t.Fatalf("ProgramQuadWord() error = %v", err)
	}
}

func TestProgramRow(t *testing.T) {
	row := make([]uint32, 128)
	for i := range row {
		row[i] = uint32(i)
	}

	m := newMockTransport(t)
	// Handshakes for the opcode, address and row words, then the
	// control poll and opcode echo.
	m.script = make([]uint64, 0, 4+len(row))
	for i := 0; i < 2+len(row); i++ {
		m.script = append(m.script, 1)
	}
	m.script = append(m.script, ctlReady, uint64(pic32.PERowProgram)<<16)

	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	var progress []Progress
	a.cfg.progress = func(p Progress) { progress = append(progress, p) }

	if err := a.ProgramRow(context.Background(), 0x1D008000, row); err != nil {
		t.Fatalf("ProgramRow() error = %v", err)
	}

	if len(progress) != len(row) {
		t.Fatalf("progress callbacks = %d, want %d", len(progress), len(row))
	}
	last := progress[len(progress)-1]
	if last.Current != len(row) || last.Percentage != 100 {
		t.Errorf("final progress = %+v, want Current=%d Percentage=100", last, len(row))
	}
}

func TestReadDataWithExecutive(t *testing.T) {
	// 40 words: one full burst plus a partial one. The executive
	// always returns full bursts, so the trailing 24 words of the
	// second burst are consumed and dropped.
	const nwords = 40

	m := newMockTransport(t)
	var script []uint64
	for burst := 0; burst < 2; burst++ {
		script = append(script, 1, 1) // opcode and address handshakes
		script = append(script, ctlReady, uint64(pic32.PERead)<<16)
		for i := 0; i < pic32.PEReadBurstWords; i++ {
			script = append(script, ctlReady, uint64(burst*pic32.PEReadBurstWords+i))
		}
	}
	m.script = script
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	got, err := a.ReadData(context.Background(), 0x1D000000, nwords)
	if err != nil {
		t.Fatalf("ReadData() error = %v", err)
	}

	want := make([]uint32, nwords)
	for i := range want {
		want[i] = uint32(i)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadData() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDataBadEcho(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		1, 1,
		ctlReady, 0xBAD00000,
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	_, err := a.ReadData(context.Background(), 0x1D000000, 32)
	var peErr *PEResponseError
	if !errors.As(err, &peErr) {
		t.Fatalf("ReadData() error = %v, want *PEResponseError", err)
	}
}

func TestReadWordWithoutExecutive(t *testing.T) {
	m := newMockTransport(t)
	m.script = []uint64{
		0x88,     // CPS set: code protection off
		ctlReady, // bootstrap control poll
	}
	m.def = ctlReady | 1 // instruction handshakes and FASTDATA capture
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))

	word, err := a.ReadWord(context.Background(), 0xBFC00000)
	if err != nil {
		t.Fatalf("ReadWord() error = %v", err)
	}
	// The capture is the default reply shifted past the marker bit.
	if want := uint32((ctlReady | 1) >> 1); word != want {
		t.Errorf("ReadWord() = 0x%08X, want 0x%08X", word, want)
	}
}

func TestVerifyData(t *testing.T) {
	// CRC16(0xFFFF, 12 34 56 78) = 0x30EC; 0x78563412 little-endian
	// is that byte sequence.
	data := []uint32{0x78563412}

	m := newMockTransport(t)
	m.script = []uint64{
		1, 1, 1, // opcode, address, byte count handshakes
		ctlReady, uint64(pic32.PEGetCRC) << 16,
		ctlReady, 0x30EC,
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	if err := a.VerifyData(context.Background(), 0x1D000000, data); err != nil {
		t.Fatalf("VerifyData() error = %v", err)
	}
}

func TestVerifyDataMismatchIsNonFatal(t *testing.T) {
	data := []uint32{0x78563412}

	m := newMockTransport(t)
	m.script = []uint64{
		1, 1, 1,
		ctlReady, uint64(pic32.PEGetCRC) << 16,
		ctlReady, 0x1234, // wrong CRC
	}
	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))
	a.useExecutive = true

	logger, hook := test.NewNullLogger()
	a.cfg.logger = logger

	err := a.VerifyData(context.Background(), 0x1D000000, data)
	var verErr *VerificationError
	if !errors.As(err, &verErr) {
		t.Fatalf("VerifyData() error = %v, want *VerificationError", err)
	}
	if verErr.Got != 0x1234 || verErr.Want != 0x30EC {
		t.Errorf("VerificationError = %+v, want Got=0x1234 Want=0x30EC", verErr)
	}

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("got %d warnings, want exactly 1", warnings)
	}
}

func TestLoadExecutiveVersionMismatch(t *testing.T) {
	// The default reply carries PROBEN and PrACC so every injected
	// instruction and FASTDATA word is acknowledged; the version
	// handshake then reads back that same default, which cannot match.
	m := newMockTransport(t)
	m.script = []uint64{0x88} // MCHP status for serial execution entry
	m.def = ctlReady | 1

	a := newTestAdapter(t, m, WithFamily(pic32.FamilyMX3))

	pe := []uint32{0x11111111, 0x22222222}
	err := a.LoadExecutive(context.Background(), pe, 0x0100)

	var verErr *PEVersionError
	if !errors.As(err, &verErr) {
		t.Fatalf("LoadExecutive() error = %v, want *PEVersionError", err)
	}
	if want := uint32(pic32.PEExecVersion)<<16 | 0x0100; verErr.Want != want {
		t.Errorf("PEVersionError.Want = 0x%08X, want 0x%08X", verErr.Want, want)
	}
	if a.useExecutive {
		t.Error("useExecutive flag set after failed load")
	}
}
