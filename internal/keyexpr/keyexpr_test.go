package keyexpr

import (
	"testing"

	"github.com/keymapd/keyhac/internal/keycode"
)

func TestParseSimple(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cond, err := tb.Parse("A")
	if err != nil {
		t.Fatalf("Parse(A) error: %v", err)
	}
	if cond.VK != keycode.A || cond.Mod != 0 || !cond.Down || cond.Oneshot {
		t.Errorf("Parse(A) = %+v, unexpected", cond)
	}
}

func TestParseModifiers(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cond, err := tb.Parse("Fn-Shift-A")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := keycode.Fn | keycode.Shift
	if cond.VK != keycode.A || cond.Mod != want {
		t.Errorf("Parse(Fn-Shift-A) = %+v, want vk=A mod=%#x", cond, want)
	}
}

func TestParsePrefixes(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)

	cond, err := tb.Parse("O-RCmd")
	if err != nil {
		t.Fatalf("Parse(O-RCmd) error: %v", err)
	}
	if !cond.Oneshot || cond.VK != keycode.RCommand {
		t.Errorf("Parse(O-RCmd) = %+v, want oneshot RCmd", cond)
	}

	cond, err = tb.Parse("D-Left")
	if err != nil {
		t.Fatalf("Parse(D-Left) error: %v", err)
	}
	if !cond.Down || cond.VK != keycode.Left {
		t.Errorf("Parse(D-Left) = %+v, want down Left", cond)
	}

	cond, err = tb.Parse("U-Left")
	if err != nil {
		t.Fatalf("Parse(U-Left) error: %v", err)
	}
	if cond.Down {
		t.Errorf("Parse(U-Left) = %+v, want down=false", cond)
	}
}

func TestParseEscapedKeyCode(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cond, err := tb.Parse("(61)")
	if err != nil {
		t.Fatalf("Parse((61)) error: %v", err)
	}
	if cond.VK != 61 {
		t.Errorf("Parse((61)) vk = %d, want 61", cond.VK)
	}
}

func TestParseInvalid(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cases := []string{"", "Bogus-A", "Shift-"}
	for _, c := range cases {
		if _, err := tb.Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", c)
		}
	}
}

func TestLayoutVariantPunctuation(t *testing.T) {
	ansi := NewTables(keycode.LayoutANSI)
	jis := NewTables(keycode.LayoutJIS)

	condANSI, err := ansi.Parse("Colon")
	if err != nil {
		t.Fatalf("ansi Parse(Colon) error: %v", err)
	}
	condJIS, err := jis.Parse("Colon")
	if err != nil {
		t.Fatalf("jis Parse(Colon) error: %v", err)
	}
	if condANSI.VK == condJIS.VK {
		t.Error("Colon should resolve to different key codes on ansi vs jis layouts")
	}
}

func TestStringRoundTrip(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cond, err := tb.Parse("Shift-Cmd-A")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	s := tb.String(cond)
	if s != "D-Shift-Cmd-A" {
		t.Errorf("String() = %q, want D-Shift-Cmd-A", s)
	}
}

func TestStringPrefersGenericOverSide(t *testing.T) {
	tb := NewTables(keycode.LayoutANSI)
	cond := KeyCondition{VK: keycode.A, Mod: keycode.CtrlL}
	cond.Down = true
	s := tb.String(cond)
	if s != "D-LCtrl-A" {
		t.Errorf("String() = %q, want D-LCtrl-A", s)
	}
}
