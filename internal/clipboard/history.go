// History implements the clipboard-history data model: a bounded,
// de-duplicated, most-recently-used ordered set of captured clips,
// keyed by full string content and re-inserted on every capture to
// move an existing entry to the newest position, with optional JSON
// persistence of a size-capped subset.
package clipboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	defaultMaxItems            = 1000
	defaultMaxDataSize         = 10 * 1024 * 1024 // 10 MiB
	defaultMaxPersistDataSize  = 64 * 1024        // 64 KiB
	defaultMaxLabelLength      = 80
)

var collapseWhitespace = regexp.MustCompile(`\s+`)

// HistoryItem is one captured clip: its full content and the display
// label derived from it.
type HistoryItem struct {
	Data  string
	Label string
}

// History is the bounded, de-duplicated, LRU-ordered clip store. Newest
// first when iterated. Not safe for concurrent use without external
// synchronization; the engine's hook lock already serializes calls made
// from the clipboard hook channel.
type History struct {
	maxItems            int
	maxDataSize         int
	maxPersistDataSize  int
	maxLabelLength      int

	order []string // oldest first; last element is most recent
	data  map[string]string
}

// NewHistory creates an empty history with the given bounds. Zero values
// fall back to the spec's defaults (1000 items, 10 MiB per item, 64 KiB
// persisted per item, 80-character labels).
func NewHistory(maxItems, maxDataSize, maxPersistDataSize, maxLabelLength int) *History {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if maxDataSize <= 0 {
		maxDataSize = defaultMaxDataSize
	}
	if maxPersistDataSize <= 0 {
		maxPersistDataSize = defaultMaxPersistDataSize
	}
	if maxLabelLength <= 0 {
		maxLabelLength = defaultMaxLabelLength
	}
	return &History{
		maxItems:           maxItems,
		maxDataSize:        maxDataSize,
		maxPersistDataSize: maxPersistDataSize,
		maxLabelLength:     maxLabelLength,
		data:               map[string]string{},
	}
}

// Capture records a newly observed clipboard content. An item already
// present moves to the most-recent position instead of duplicating
// (LRU re-insertion). Content larger than maxDataSize is dropped
// entirely. An empty string is ignored — there is nothing to capture.
func (h *History) Capture(content string) {
	if content == "" {
		return
	}
	if len(content) > h.maxDataSize {
		return
	}

	if _, exists := h.data[content]; exists {
		h.removeFromOrder(content)
	}
	h.data[content] = content
	h.order = append(h.order, content)

	for len(h.order) > h.maxItems {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.data, oldest)
	}
}

func (h *History) removeFromOrder(content string) {
	for i, c := range h.order {
		if c == content {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// Items returns the history newest-first, with each entry's display
// label: the first maxLabelLength characters of its content, collapsing
// consecutive whitespace.
func (h *History) Items() []HistoryItem {
	out := make([]HistoryItem, 0, len(h.order))
	for i := len(h.order) - 1; i >= 0; i-- {
		content := h.order[i]
		out = append(out, HistoryItem{Data: content, Label: h.label(content)})
	}
	return out
}

func (h *History) label(content string) string {
	collapsed := strings.TrimSpace(collapseWhitespace.ReplaceAllString(content, " "))
	if r := []rune(collapsed); len(r) > h.maxLabelLength {
		return string(r[:h.maxLabelLength])
	}
	return collapsed
}

// Len reports the number of retained items.
func (h *History) Len() int { return len(h.order) }

type persistedClip struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type persistedFile struct {
	ClipboardHistory []persistedClip `json:"clipboard_history"`
}

// Save serializes the retained items, each truncated to
// maxPersistDataSize, as {"clipboard_history": [{"type":"string",
// "data":…}, …]} to path, oldest-first (matching capture order, so a
// reload followed by fresh captures preserves relative recency).
func (h *History) Save(path string) error {
	out := persistedFile{ClipboardHistory: make([]persistedClip, 0, len(h.order))}
	for _, content := range h.order {
		persisted := content
		if len(persisted) > h.maxPersistDataSize {
			persisted = persisted[:h.maxPersistDataSize]
		}
		out.ClipboardHistory = append(out.ClipboardHistory, persistedClip{Type: "string", Data: persisted})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keyhac-clipboard-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// LoadHistory reads a persisted history file, reconstructing items in
// their saved (oldest-first) order. A missing file yields an empty,
// non-error history, matching the engine's general "absent config is
// default config" convention.
func LoadHistory(path string, maxItems, maxDataSize, maxPersistDataSize, maxLabelLength int) (*History, error) {
	h := NewHistory(maxItems, maxDataSize, maxPersistDataSize, maxLabelLength)

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}

	var in persistedFile
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	for _, clip := range in.ClipboardHistory {
		if clip.Type != "string" {
			continue
		}
		h.Capture(clip.Data)
	}
	return h, nil
}
