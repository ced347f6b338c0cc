package pic32

import "testing"

func TestFamilyCapabilities(t *testing.T) {
	tests := []struct {
		family     Family
		busMatrix  bool
		word       bool
		doubleWord bool
		quadWord   bool
		sharedPins bool
	}{
		{FamilyMX1, true, true, false, false, true},
		{FamilyMX3, true, true, false, false, true},
		{FamilyMK, true, true, false, true, false},
		{FamilyMZ, true, true, false, true, false},
		{FamilyMM, false, false, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			if got := tt.family.HasBusMatrix(); got != tt.busMatrix {
				t.Errorf("HasBusMatrix() = %v, want %v", got, tt.busMatrix)
			}
			if got := tt.family.SupportsWordProgram(); got != tt.word {
				t.Errorf("SupportsWordProgram() = %v, want %v", got, tt.word)
			}
			if got := tt.family.SupportsDoubleWordProgram(); got != tt.doubleWord {
				t.Errorf("SupportsDoubleWordProgram() = %v, want %v", got, tt.doubleWord)
			}
			if got := tt.family.SupportsQuadWordProgram(); got != tt.quadWord {
				t.Errorf("SupportsQuadWordProgram() = %v, want %v", got, tt.quadWord)
			}
			if got := tt.family.SharesICSPPins(); got != tt.sharedPins {
				t.Errorf("SharesICSPPins() = %v, want %v", got, tt.sharedPins)
			}
		})
	}
}

func TestFamilyValid(t *testing.T) {
	if !FamilyMZ.Valid() {
		t.Error("FamilyMZ.Valid() = false")
	}
	if Family(99).Valid() {
		t.Error("Family(99).Valid() = true")
	}
}

func TestLoaderStubsWellFormed(t *testing.T) {
	for name, stub := range map[string][]uint16{"standard": LoaderStub, "MM": LoaderStubMM} {
		if len(stub) == 0 {
			t.Errorf("%s loader stub is empty", name)
		}
		if len(stub)%2 != 0 {
			t.Errorf("%s loader stub has odd halfword count %d", name, len(stub))
		}
	}
}
