//go:build linux

package hook

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/keymapd/keyhac/internal/keycode"
)

// evdevToVK maps evdev KEY_* scancodes to the shared keycode.Code space.
// keycode.Code mirrors the host accessibility layer's virtual key codes
// (see internal/keycode), so on Linux every physical key read off
// /dev/input/eventN is translated through this table before it reaches
// the engine; vkToEvdev is its inverse, used for injection.
var evdevToVK = map[evdev.EvCode]keycode.Code{
	30: keycode.A, 31: keycode.S, 32: keycode.D, 33: keycode.F, 35: keycode.H,
	34: keycode.G, 44: keycode.Z, 45: keycode.X, 46: keycode.C, 47: keycode.V,
	48: keycode.B, 16: keycode.Q, 17: keycode.W, 18: keycode.E, 19: keycode.R,
	21: keycode.Y, 20: keycode.T, 2: keycode.Digit1, 3: keycode.Digit2,
	4: keycode.Digit3, 5: keycode.Digit4, 7: keycode.Digit6, 6: keycode.Digit5,
	10: keycode.Digit9, 8: keycode.Digit7, 12: keycode.Minus, 9: keycode.Digit8,
	11: keycode.Digit0, 24: keycode.O, 22: keycode.U, 23: keycode.I, 25: keycode.P,
	38: keycode.L, 36: keycode.J, 37: keycode.K, 39: keycode.Semicolon,
	51: keycode.Comma, 53: keycode.Slash, 49: keycode.N, 50: keycode.M,
	52: keycode.Period, 41: keycode.BackQuote,

	28: keycode.Return, 15: keycode.Tab, 57: keycode.Space, 14: keycode.Back,
	1: keycode.Escape, 58: keycode.Capital, 63: keycode.F5, 64: keycode.F6,
	65: keycode.F7, 61: keycode.F3, 66: keycode.F8, 67: keycode.F9,
	87: keycode.F11, 88: keycode.F12, 59: keycode.F1, 60: keycode.F2,
	62: keycode.F4, 68: keycode.F10,
	183: keycode.F13, 184: keycode.F14, 185: keycode.F15, 186: keycode.F16,
	187: keycode.F17, 188: keycode.F18, 189: keycode.F19, 190: keycode.F20,
	105: keycode.Left, 106: keycode.Right, 108: keycode.Down, 103: keycode.Up,
	102: keycode.Home, 107: keycode.End, 104: keycode.Prior, 109: keycode.Next,
	111: keycode.Delete, 110: keycode.Help,

	26: keycode.ANSIOpenBracket, 27: keycode.ANSICloseBracket,
	40: keycode.ANSIQuote, 43: keycode.ANSIBackslash, 13: keycode.ANSIEqual,

	42: keycode.LShift, 54: keycode.RShift,
	29: keycode.LControl, 97: keycode.RControl,
	56: keycode.LAlt, 100: keycode.RAlt,
	125: keycode.LCommand, 126: keycode.RCommand,
}

var vkToEvdev = func() map[keycode.Code]evdev.EvCode {
	out := make(map[keycode.Code]evdev.EvCode, len(evdevToVK))
	for ev, vk := range evdevToVK {
		out[vk] = ev
	}
	return out
}()
