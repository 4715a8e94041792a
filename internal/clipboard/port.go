package clipboard

import (
	"time"

	atclip "github.com/atotto/clipboard"

	"github.com/keymapd/keyhac/internal/ports"
)

// stringClip is the only clip representation this port deals in —
// plain text. Image and file clips are out of scope.
type stringClip struct{ s string }

func (c *stringClip) String() (string, error) { return c.s, nil }
func (c *stringClip) SetString(s string) error { c.s = s; return nil }
func (c *stringClip) Destroy() {}

// Port implements ports.ClipboardPort over the system clipboard via
// github.com/atotto/clipboard, generalizing PasteText's one-shot
// pbcopy/xdotool/wl-copy dance into the narrow Current/SetCurrent/NewClip
// contract the engine's Structured actions (ShowClipboardHistory and
// friends, internal/action) call through.
type Port struct{}

// NewPort constructs a clipboard Port.
func NewPort() *Port { return &Port{} }

func (p *Port) Current() (ports.Clip, error) {
	s, err := atclip.ReadAll()
	if err != nil {
		return nil, err
	}
	return &stringClip{s: s}, nil
}

func (p *Port) SetCurrent(c ports.Clip) error {
	s, err := c.String()
	if err != nil {
		return err
	}
	return atclip.WriteAll(s)
}

func (p *Port) NewClip(s string) ports.Clip { return &stringClip{s: s} }

// Watch polls the system clipboard every interval and calls onChange
// with its content whenever it differs from the last-seen value, until
// stop is closed. github.com/atotto/clipboard exposes no native
// change-notification API, so polling is the only way to feed the
// history's capture path. The initial clipboard content is read once
// and not reported: only content that changes after the watch starts
// counts as a capture.
func (p *Port) Watch(stop <-chan struct{}, interval time.Duration, onChange func(s string)) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last, _ := atclip.ReadAll()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s, err := atclip.ReadAll()
			if err != nil || s == last || s == "" {
				continue
			}
			last = s
			onChange(s)
		}
	}
}
