package pos

import "testing"

func TestAdvanceAndString(t *testing.T) {
	p := Start("prog.ngc")
	p = p.Advance('G')
	p = p.Advance('0')
	if p.Column != 3 {
		t.Fatalf("column = %d, want 3", p.Column)
	}
	if p.Checksum != 'G'^'0' {
		t.Fatalf("checksum = %d, want %d", p.Checksum, byte('G')^byte('0'))
	}
	p = p.NextLine()
	if p.Line != 2 || p.Column != 1 {
		t.Fatalf("after NextLine: %+v", p)
	}
	if got := p.String(); got == "" {
		t.Fatal("String() returned empty")
	}
}
