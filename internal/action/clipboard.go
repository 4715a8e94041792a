package action

import (
	"log"

	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/keycode"
	"github.com/keymapd/keyhac/internal/ports"
)

// ClipboardPaster is the narrow surface ShowClipboardHistory needs to
// act on a chosen item: put it on the system clipboard and replay the
// host's paste keystroke. Satisfied by *clipboard.Port plus a paste
// callback, kept separate from ports.ClipboardPort so this package does
// not need to know how "paste" is performed on a given host.
type ClipboardPaster interface {
	SetCurrent(ports.Clip) error
	NewClip(s string) ports.Clip
}

// ShowClipboardHistory opens a chooser over the current clipboard
// history and, on selection, puts the chosen item back on the
// clipboard and invokes Paste to replay it into the focused app.
// Snippets vs. full history is just a different History instance wired
// in at the call site (e.g. a second, user-curated History that
// persistence never evicts from).
type ShowClipboardHistory struct {
	History   *clipboard.History
	Chooser   ports.ChooserPort
	Clipboard ClipboardPaster
	Paste     func(text string)
	Logger    *log.Logger
}

// Invoke satisfies keytable.Invokable.
func (a ShowClipboardHistory) Invoke() {
	items := a.History.Items()
	if len(items) == 0 {
		if a.Logger != nil {
			a.Logger.Printf("clipboard history is empty")
		}
		return
	}

	chooserItems := make([]ports.ChooserItem, len(items))
	for i, it := range items {
		chooserItems[i] = ports.ChooserItem{Label: it.Label, Value: it.Data}
	}

	a.Chooser.Open("Clipboard History", chooserItems, func(index int, _ keycode.ModifierMask) {
		if index < 0 || index >= len(items) {
			return
		}
		text := items[index].Data
		if err := a.Clipboard.SetCurrent(a.Clipboard.NewClip(text)); err != nil {
			if a.Logger != nil {
				a.Logger.Printf("set clipboard from history: %v", err)
			}
			return
		}
		if a.Paste != nil {
			a.Paste(text)
		}
	}, func() {})
}
