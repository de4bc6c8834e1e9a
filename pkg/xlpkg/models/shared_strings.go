package models

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SharedStringItem is the canonical content of one shared string: plain text
// or a rich-text run sequence.
type SharedStringItem struct {
	Text     string
	RichText *RichText
}

// Hash returns the content hash used for deduplication.
func (s SharedStringItem) Hash() uint64 {
	d := xxhash.New()
	if s.RichText == nil {
		_, _ = d.WriteString("t\x00")
		_, _ = d.WriteString(s.Text)
		return d.Sum64()
	}
	_, _ = d.WriteString("r\x00")
	for _, run := range s.RichText.Runs {
		if f := run.Font; f != nil {
			_, _ = d.WriteString(f.Name + "\x01" + strconv.FormatFloat(f.Size, 'g', -1, 64) + "\x01" +
				strconv.FormatBool(f.Bold) + strconv.FormatBool(f.Italic) + strconv.FormatBool(f.Strike) + "\x01" +
				f.Underline + "\x01" + f.Color + "\x01" + strconv.Itoa(f.Family) + "\x01" + f.Scheme)
		}
		_, _ = d.WriteString("\x02")
		_, _ = d.WriteString(run.Text)
		_, _ = d.WriteString("\x03")
	}
	return d.Sum64()
}

// Equal compares content exactly.
func (s SharedStringItem) Equal(o SharedStringItem) bool {
	if (s.RichText == nil) != (o.RichText == nil) {
		return false
	}
	if s.RichText == nil {
		return s.Text == o.Text
	}
	return s.RichText.Equal(*o.RichText)
}

// Value returns the text of the item, concatenating rich-text runs.
func (s SharedStringItem) Value() string {
	if s.RichText != nil {
		return s.RichText.Text()
	}
	return s.Text
}

// SharedStringTable is the workbook-wide interned string store. Item order is
// the serialization index. Indexes handed out stay valid for the lifetime of
// the table. Safe for concurrent use.
type SharedStringTable struct {
	mu     sync.RWMutex
	items  []SharedStringItem
	lookup map[uint64][]int
	count  int
}

// NewSharedStringTable returns an empty table.
func NewSharedStringTable() *SharedStringTable {
	return &SharedStringTable{}
}

// Append adds an item without deduplication. The read path uses it to load
// the table in container order.
func (t *SharedStringTable) Append(item SharedStringItem) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, item)
	if len(t.lookup) > 0 {
		h := item.Hash()
		t.lookup[h] = append(t.lookup[h], len(t.items)-1)
	}
	return len(t.items) - 1
}

// ensureLookup builds the hash index once, when it is empty and items exist.
// Callers hold the write lock.
func (t *SharedStringTable) ensureLookup() {
	if len(t.lookup) > 0 || len(t.items) == 0 {
		return
	}
	t.lookup = make(map[uint64][]int, len(t.items))
	for i, item := range t.items {
		h := item.Hash()
		t.lookup[h] = append(t.lookup[h], i)
	}
}

func (t *SharedStringTable) find(item SharedStringItem, h uint64) (int, bool) {
	for _, i := range t.lookup[h] {
		if t.items[i].Equal(item) {
			return i, true
		}
	}
	return 0, false
}

// Register interns item and returns its index. Every call counts as one
// registration, whether or not the content was new.
func (t *SharedStringTable) Register(item SharedStringItem) int {
	if item.RichText != nil {
		rt := item.RichText.Clone()
		item.RichText = &rt
	}
	h := item.Hash()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.ensureLookup()
	if i, ok := t.find(item, h); ok {
		return i
	}
	if t.lookup == nil {
		t.lookup = make(map[uint64][]int)
	}
	n := len(t.items)
	t.items = append(t.items, item)
	t.lookup[h] = append(t.lookup[h], n)
	return n
}

// RegisterText interns plain text.
func (t *SharedStringTable) RegisterText(s string) int {
	return t.Register(SharedStringItem{Text: s})
}

// RegisterRichText interns rich text.
func (t *SharedStringTable) RegisterRichText(rt RichText) int {
	return t.Register(SharedStringItem{RichText: &rt})
}

// Lookup returns the index of item without registering it.
func (t *SharedStringTable) Lookup(item SharedStringItem) (int, bool) {
	h := item.Hash()
	t.mu.RLock()
	if len(t.lookup) > 0 || len(t.items) == 0 {
		i, ok := t.find(item, h)
		t.mu.RUnlock()
		return i, ok
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLookup()
	return t.find(item, h)
}

// Item returns the item at index i.
func (t *SharedStringTable) Item(i int) (SharedStringItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.items) {
		return SharedStringItem{}, false
	}
	return t.items[i], true
}

// Items returns a copy of every item in index order.
func (t *SharedStringTable) Items() []SharedStringItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]SharedStringItem(nil), t.items...)
}

// Len returns the number of unique items.
func (t *SharedStringTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Count returns the number of registrations.
func (t *SharedStringTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// ResetCount zeroes the registration counter. Items and indexes are kept.
func (t *SharedStringTable) ResetCount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = 0
}

// HasLookup reports whether the hash index has been built.
func (t *SharedStringTable) HasLookup() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.lookup) > 0
}
