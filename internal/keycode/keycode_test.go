package keycode

import "testing"

func TestEqReflexiveSymmetric(t *testing.T) {
	masks := []ModifierMask{0, Alt, CtrlL, ShiftR, Alt | CtrlL, Cmd | FnR, UserAll}
	for _, m := range masks {
		if !Eq(m, m) {
			t.Errorf("Eq(%#x, %#x) = false, want true (reflexive)", m, m)
		}
	}
	for _, a := range masks {
		for _, b := range masks {
			if Eq(a, b) != Eq(b, a) {
				t.Errorf("Eq(%#x, %#x) != Eq(%#x, %#x), want symmetric", a, b, b, a)
			}
		}
	}
}

func TestEqGenericSubsumesSide(t *testing.T) {
	if !Eq(Ctrl, CtrlL) {
		t.Error("generic Ctrl should be equivalent to CtrlL")
	}
	if !Eq(Ctrl, CtrlR) {
		t.Error("generic Ctrl should be equivalent to CtrlR")
	}
	if Eq(CtrlL, CtrlR) {
		t.Error("CtrlL and CtrlR should not be equivalent to each other")
	}
}

func TestEqCombinedMasks(t *testing.T) {
	if !Eq(Alt|Ctrl, AltL|CtrlR) {
		t.Error("generic combo should subsume any side-specific combo")
	}
	if Eq(Alt, Alt|Ctrl) {
		t.Error("extra bit on one side should break equivalence")
	}
}

func TestIsUser(t *testing.T) {
	if !User0.IsUser() || !User1L.IsUser() || !User1R.IsUser() {
		t.Error("user modifier bits should report IsUser() == true")
	}
	if Alt.IsUser() || Ctrl.IsUser() {
		t.Error("non-user modifier bits should report IsUser() == false")
	}
}
