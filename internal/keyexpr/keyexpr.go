// Package keyexpr parses and renders key expressions such as "Fn-Shift-A",
// "O-RCmd" and "D-Left" into KeyCondition values, and supplies the
// layout-variant key-name tables (ansi/jis) the parser consults.
package keyexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/keymapd/keyhac/internal/keycode"
)

// KeyCondition identifies a single key stroke: the physical key, the
// modifier state at the moment of the stroke, whether it is a down or up
// event, and whether it is a synthetic one-shot condition.
type KeyCondition struct {
	VK      keycode.Code
	Mod     keycode.ModifierMask
	Down    bool
	Oneshot bool

	// Explicit is true when the expression this condition was parsed from
	// carried an explicit "D-" or "U-" token. It has no bearing on table
	// lookup (Equal ignores it) and exists only so an Input context can
	// tell "send both halves" (neither D nor U given) apart from "send
	// only the down/up half" (D or U given) when Down happens to be true
	// either way.
	Explicit bool
}

// Equal compares two conditions using modifier equivalence, never plain
// bitwise equality, matching the invariant in keycode.Eq.
func (k KeyCondition) Equal(o KeyCondition) bool {
	if k.VK != o.VK {
		return false
	}
	if !keycode.Eq(k.Mod, o.Mod) {
		return false
	}
	if k.Down != o.Down {
		return false
	}
	if k.Oneshot != o.Oneshot {
		return false
	}
	return true
}

// InvalidExpressionError is returned when a key expression cannot be
// parsed: an unknown modifier token, an unknown key name, or a missing key.
type InvalidExpressionError struct {
	Expr string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid key expression: %q", e.Expr)
}

var vkStrTableCommon = map[keycode.Code]string{
	keycode.A: "A", keycode.B: "B", keycode.C: "C", keycode.D: "D", keycode.E: "E",
	keycode.F: "F", keycode.G: "G", keycode.H: "H", keycode.I: "I", keycode.J: "J",
	keycode.K: "K", keycode.L: "L", keycode.M: "M", keycode.N: "N", keycode.O: "O",
	keycode.P: "P", keycode.Q: "Q", keycode.R: "R", keycode.S: "S", keycode.T: "T",
	keycode.U: "U", keycode.V: "V", keycode.W: "W", keycode.X: "X", keycode.Y: "Y", keycode.Z: "Z",

	keycode.Digit0: "0", keycode.Digit1: "1", keycode.Digit2: "2", keycode.Digit3: "3",
	keycode.Digit4: "4", keycode.Digit5: "5", keycode.Digit6: "6", keycode.Digit7: "7",
	keycode.Digit8: "8", keycode.Digit9: "9",

	keycode.Minus: "Minus", keycode.Comma: "Comma", keycode.Period: "Period",

	keycode.NumpadClear: "NumClear", keycode.NumpadEnter: "NumEnter", keycode.NumpadEqual: "NumEqual",
	keycode.Divide: "Divide", keycode.Multiply: "Multiply", keycode.Subtract: "Subtract",
	keycode.Add: "Add", keycode.Decimal: "Decimal",

	keycode.Numpad0: "Num0", keycode.Numpad1: "Num1", keycode.Numpad2: "Num2", keycode.Numpad3: "Num3",
	keycode.Numpad4: "Num4", keycode.Numpad5: "Num5", keycode.Numpad6: "Num6", keycode.Numpad7: "Num7",
	keycode.Numpad8: "Num8", keycode.Numpad9: "Num9",

	keycode.F1: "F1", keycode.F2: "F2", keycode.F3: "F3", keycode.F4: "F4", keycode.F5: "F5",
	keycode.F6: "F6", keycode.F7: "F7", keycode.F8: "F8", keycode.F9: "F9", keycode.F10: "F10",
	keycode.F11: "F11", keycode.F12: "F12", keycode.F13: "F13", keycode.F14: "F14", keycode.F15: "F15",
	keycode.F16: "F16", keycode.F17: "F17", keycode.F18: "F18", keycode.F19: "F19", keycode.F20: "F20",

	keycode.Left: "Left", keycode.Right: "Right", keycode.Up: "Up", keycode.Down: "Down",

	keycode.Space: "Space", keycode.Tab: "Tab", keycode.Back: "Back", keycode.Return: "Return",
	keycode.Escape: "Escape", keycode.Capital: "CapsLock", keycode.Menu: "Menu",

	keycode.Help: "Help", keycode.Delete: "Delete", keycode.Home: "Home", keycode.End: "End",
	keycode.Next: "PageDown", keycode.Prior: "PageUp",

	keycode.JISEisu: "Eisu", keycode.JISKana: "Kana",

	keycode.LAlt: "LAlt", keycode.RAlt: "RAlt", keycode.LControl: "LCtrl", keycode.RControl: "RCtrl",
	keycode.LShift: "LShift", keycode.RShift: "RShift", keycode.LCommand: "LCmd", keycode.RCommand: "RCmd",
	keycode.Function: "Fn",
}

var vkStrTableANSI = map[keycode.Code]string{
	keycode.Semicolon: "Semicolon", keycode.Slash: "Slash", keycode.BackQuote: "BackQuote",
	keycode.ANSIOpenBracket: "OpenBracket", keycode.ANSICloseBracket: "CloseBracket",
	keycode.ANSIBackslash: "BackSlash", keycode.ANSIQuote: "Quote", keycode.ANSIEqual: "Equal",
}

var vkStrTableJIS = map[keycode.Code]string{
	keycode.Semicolon: "Semicolon", keycode.JISColon: "Colon", keycode.Slash: "Slash",
	keycode.BackQuote: "BackQuote", keycode.JISAtmark: "Atmark", keycode.JISOpenBracket: "OpenBracket",
	keycode.JISYen: "Yen", keycode.JISCloseBracket: "CloseBracket", keycode.JISCaret: "Caret",
	keycode.JISBackslash: "BackSlash",
}

var strVKTableCommon = map[string]keycode.Code{
	"A": keycode.A, "B": keycode.B, "C": keycode.C, "D": keycode.D, "E": keycode.E,
	"F": keycode.F, "G": keycode.G, "H": keycode.H, "I": keycode.I, "J": keycode.J,
	"K": keycode.K, "L": keycode.L, "M": keycode.M, "N": keycode.N, "O": keycode.O,
	"P": keycode.P, "Q": keycode.Q, "R": keycode.R, "S": keycode.S, "T": keycode.T,
	"U": keycode.U, "V": keycode.V, "W": keycode.W, "X": keycode.X, "Y": keycode.Y, "Z": keycode.Z,

	"0": keycode.Digit0, "1": keycode.Digit1, "2": keycode.Digit2, "3": keycode.Digit3,
	"4": keycode.Digit4, "5": keycode.Digit5, "6": keycode.Digit6, "7": keycode.Digit7,
	"8": keycode.Digit8, "9": keycode.Digit9,

	"MINUS": keycode.Minus, "COMMA": keycode.Comma, "PERIOD": keycode.Period,

	"NUMCLEAR": keycode.NumpadClear, "NUMENTER": keycode.NumpadEnter, "NUMEQUAL": keycode.NumpadEqual,
	"DIVIDE": keycode.Divide, "MULTIPLY": keycode.Multiply, "SUBTRACT": keycode.Subtract,
	"ADD": keycode.Add, "DECIMAL": keycode.Decimal,

	"NUM0": keycode.Numpad0, "NUM1": keycode.Numpad1, "NUM2": keycode.Numpad2, "NUM3": keycode.Numpad3,
	"NUM4": keycode.Numpad4, "NUM5": keycode.Numpad5, "NUM6": keycode.Numpad6, "NUM7": keycode.Numpad7,
	"NUM8": keycode.Numpad8, "NUM9": keycode.Numpad9,

	"F1": keycode.F1, "F2": keycode.F2, "F3": keycode.F3, "F4": keycode.F4, "F5": keycode.F5,
	"F6": keycode.F6, "F7": keycode.F7, "F8": keycode.F8, "F9": keycode.F9, "F10": keycode.F10,
	"F11": keycode.F11, "F12": keycode.F12, "F13": keycode.F13, "F14": keycode.F14, "F15": keycode.F15,
	"F16": keycode.F16, "F17": keycode.F17, "F18": keycode.F18, "F19": keycode.F19, "F20": keycode.F20,

	"LEFT": keycode.Left, "RIGHT": keycode.Right, "UP": keycode.Up, "DOWN": keycode.Down,

	"SPACE": keycode.Space, "TAB": keycode.Tab, "BACK": keycode.Back, "RETURN": keycode.Return,
	"ENTER": keycode.Return, "ESCAPE": keycode.Escape, "ESC": keycode.Escape,
	"CAPSLOCK": keycode.Capital, "CAPS": keycode.Capital, "CAPITAL": keycode.Capital, "MENU": keycode.Menu,

	"HELP": keycode.Help, "DELETE": keycode.Delete, "HOME": keycode.Home, "END": keycode.End,
	"PAGEDOWN": keycode.Next, "PAGEUP": keycode.Prior,

	"EISU": keycode.JISEisu, "KANA": keycode.JISKana,

	"ALT": keycode.LAlt, "LALT": keycode.LAlt, "RALT": keycode.RAlt,
	"CTRL": keycode.LControl, "LCTRL": keycode.LControl, "RCTRL": keycode.RControl,
	"SHIFT": keycode.LShift, "LSHIFT": keycode.LShift, "RSHIFT": keycode.RShift,
	"CMD": keycode.LCommand, "LCMD": keycode.LCommand, "RCMD": keycode.RCommand,
	"FN": keycode.Function,
}

var strVKTableANSI = map[string]keycode.Code{
	"SEMICOLON": keycode.Semicolon, "COLON": keycode.Semicolon, "SLASH": keycode.Slash,
	"BACKQUOTE": keycode.BackQuote, "TILDE": keycode.BackQuote,
	"OPENBRACKET": keycode.ANSIOpenBracket, "CLOSEBRACKET": keycode.ANSICloseBracket,
	"BACKSLASH": keycode.ANSIBackslash, "YEN": keycode.ANSIBackslash,
	"QUOTE": keycode.ANSIQuote, "DOUBLEQUOTE": keycode.ANSIQuote,
	"UNDERSCORE": keycode.Minus, "ASTERISK": keycode.Digit8, "ATMARK": keycode.Digit2,
	"CARET": keycode.Digit6, "EQUAL": keycode.ANSIEqual, "PLUS": keycode.ANSIEqual,
}

var strVKTableJIS = map[string]keycode.Code{
	"SEMICOLON": keycode.Semicolon, "COLON": keycode.JISColon, "SLASH": keycode.Slash,
	"BACKQUOTE": keycode.BackQuote, "TILDE": keycode.JISCaret,
	"OPENBRACKET": keycode.JISOpenBracket, "CLOSEBRACKET": keycode.JISCloseBracket,
	"BACKSLASH": keycode.JISBackslash, "YEN": keycode.JISYen,
	"QUOTE": keycode.Digit7, "DOUBLEQUOTE": keycode.Digit2,
	"UNDERSCORE": keycode.JISBackslash, "ASTERISK": keycode.JISColon, "ATMARK": keycode.JISAtmark,
	"CARET": keycode.JISCaret, "EQUAL": keycode.Minus, "PLUS": keycode.Semicolon,
}

var strModTable = map[string]keycode.ModifierMask{
	"ALT": keycode.Alt, "CTRL": keycode.Ctrl, "SHIFT": keycode.Shift, "WIN": keycode.Win,
	"CMD": keycode.Cmd, "FN": keycode.Fn, "USER0": keycode.User0, "USER1": keycode.User1,

	"LALT": keycode.AltL, "LCTRL": keycode.CtrlL, "LSHIFT": keycode.ShiftL, "LWIN": keycode.WinL,
	"LCMD": keycode.CmdL, "LUSER0": keycode.User0L, "LUSER1": keycode.User1L,

	"RALT": keycode.AltR, "RCTRL": keycode.CtrlR, "RSHIFT": keycode.ShiftR, "RWIN": keycode.WinR,
	"RCMD": keycode.CmdR, "RUSER0": keycode.User0R, "RUSER1": keycode.User1R,
}

// Tables holds the key-name tables for a single keyboard layout, built by
// merging the common table with the layout-specific variant.
type Tables struct {
	vkToStr map[keycode.Code]string
	strToVK map[string]keycode.Code
	layout  keycode.Layout
}

// NewTables initializes the key-name tables for the given layout, as
// reported by the host hook. Unsupported layouts fall back to the common
// table alone (letters, digits, editing keys still resolve).
func NewTables(layout keycode.Layout) *Tables {
	vk := make(map[keycode.Code]string, len(vkStrTableCommon))
	str := make(map[string]keycode.Code, len(strVKTableCommon))
	for k, v := range vkStrTableCommon {
		vk[k] = v
	}
	for k, v := range strVKTableCommon {
		str[k] = v
	}
	switch layout {
	case keycode.LayoutJIS:
		for k, v := range vkStrTableJIS {
			vk[k] = v
		}
		for k, v := range strVKTableJIS {
			str[k] = v
		}
	case keycode.LayoutANSI, keycode.LayoutISO:
		for k, v := range vkStrTableANSI {
			vk[k] = v
		}
		for k, v := range strVKTableANSI {
			str[k] = v
		}
	}
	return &Tables{vkToStr: vk, strToVK: str, layout: layout}
}

// StrToVK converts a key name, or a parenthesized decimal escape like
// "(61)", to a key code.
func (t *Tables) StrToVK(name string) (keycode.Code, error) {
	if vk, ok := t.strToVK[strings.ToUpper(name)]; ok {
		return vk, nil
	}
	trimmed := strings.Trim(name, "()")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &InvalidExpressionError{Expr: name}
	}
	return keycode.Code(n), nil
}

// VKToStr converts a key code back to its canonical name, falling back to
// a parenthesized decimal escape for codes with no table entry.
func (t *Tables) VKToStr(vk keycode.Code) string {
	if name, ok := t.vkToStr[vk]; ok {
		return name
	}
	return fmt.Sprintf("(%d)", int(vk))
}

// StrToMod converts a modifier-name token to its bitmask. forceLR shifts
// a generic bit into its left-specific zone, used when a table registers a
// default modifier key and wants the side-specific bit instead of generic.
func StrToMod(name string, forceLR bool) (keycode.ModifierMask, error) {
	mod, ok := strModTable[strings.ToUpper(name)]
	if !ok {
		return 0, &InvalidExpressionError{Expr: name}
	}
	if forceLR && mod&0xff != 0 {
		mod <<= 8
	}
	return mod, nil
}

// Parse parses a key expression of the form "[O|D|U-]?(Mod-)*KEY",
// case-insensitive, into a KeyCondition. The last "-"-delimited token is
// the key name; earlier tokens are either a modifier name or one of O
// (one-shot), D (explicit down), U (explicit up).
func (t *Tables) Parse(s string) (KeyCondition, error) {
	upper := strings.ToUpper(s)
	tokens := strings.Split(upper, "-")
	if len(tokens) == 0 || tokens[len(tokens)-1] == "" {
		return KeyCondition{}, &InvalidExpressionError{Expr: s}
	}

	var mod keycode.ModifierMask
	down := true
	oneshot := false
	explicit := false

	for _, tok := range tokens[:len(tokens)-1] {
		tok = strings.TrimSpace(tok)
		if m, err := StrToMod(tok, false); err == nil {
			mod |= m
			continue
		}
		switch tok {
		case "O":
			oneshot = true
		case "D":
			down = true
			explicit = true
		case "U":
			down = false
			explicit = true
		default:
			return KeyCondition{}, &InvalidExpressionError{Expr: s}
		}
	}

	keyTok := strings.TrimSpace(tokens[len(tokens)-1])
	vk, err := t.StrToVK(keyTok)
	if err != nil {
		return KeyCondition{}, &InvalidExpressionError{Expr: s}
	}

	return KeyCondition{VK: vk, Mod: mod, Down: down, Oneshot: oneshot, Explicit: explicit}, nil
}

// String renders the canonical form of a condition, used in logs. Modifier
// bits are emitted generic-first, falling back to the left/right variant
// name when only a side-specific bit is set.
func (t *Tables) String(k KeyCondition) string {
	var b strings.Builder
	switch {
	case k.Oneshot:
		b.WriteString("O-")
	case k.Down:
		b.WriteString("D-")
	default:
		b.WriteString("U-")
	}

	writeMod(&b, k.Mod, keycode.Alt, keycode.AltL, keycode.AltR, "Alt", "LAlt", "RAlt")
	writeMod(&b, k.Mod, keycode.Ctrl, keycode.CtrlL, keycode.CtrlR, "Ctrl", "LCtrl", "RCtrl")
	writeMod(&b, k.Mod, keycode.Shift, keycode.ShiftL, keycode.ShiftR, "Shift", "LShift", "RShift")
	writeMod(&b, k.Mod, keycode.Win, keycode.WinL, keycode.WinR, "Win", "LWin", "RWin")
	writeMod(&b, k.Mod, keycode.Cmd, keycode.CmdL, keycode.CmdR, "Cmd", "LCmd", "RCmd")
	writeMod(&b, k.Mod, keycode.Fn, keycode.FnL, keycode.FnR, "Fn", "LFn", "RFn")
	writeMod(&b, k.Mod, keycode.User0, keycode.User0L, keycode.User0R, "User0", "LUser0", "RUser0")
	writeMod(&b, k.Mod, keycode.User1, keycode.User1L, keycode.User1R, "User1", "LUser1", "RUser1")

	b.WriteString(t.VKToStr(k.VK))
	return b.String()
}

func writeMod(b *strings.Builder, mod, generic, left, right keycode.ModifierMask, genName, leftName, rightName string) {
	switch {
	case mod&generic != 0:
		b.WriteString(genName + "-")
	case mod&left != 0:
		b.WriteString(leftName + "-")
	case mod&right != 0:
		b.WriteString(rightName + "-")
	}
}
