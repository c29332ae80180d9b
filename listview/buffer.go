package listview

import (
	"fmt"
	"slices"
)

type Mode string

const (
	ModePaged    Mode = "paged"
	ModeInfinite Mode = "infinite"
)

func (m Mode) Validate() error {
	switch m {
	case ModePaged, ModeInfinite:
		return nil
	}
	return fmt.Errorf("%w '%s'", ErrInvalidMode, m)
}

// Buffer holds the in-memory items. Paged buffers are replaced by every push.
// Infinite buffers grow page by page during a session and only a push of
// page 1 (or Reset) starts a new one.
type Buffer struct {
	mode  Mode
	items []Entity
	page  int
}

func NewBuffer(mode Mode) *Buffer {
	return &Buffer{mode: mode}
}

// Push stores items received for p. It returns false when the push does not
// continue the current infinite session and has been discarded.
func (b *Buffer) Push(items []Entity, p *Pagination) bool {
	if b.mode == ModePaged || p == nil {
		b.replace(items, p)
		return true
	}

	switch {
	case p.Page <= 1:
		b.replace(items, p)
	case b.page > 0 && p.Page == b.page+1:
		b.items = append(b.items, items...)
		b.page = p.Page
	default:
		return false
	}
	return true
}

func (b *Buffer) replace(items []Entity, p *Pagination) {
	b.items = slices.Clone(items)
	b.page = 0
	if p != nil {
		b.page = p.Page
	}
}

func (b *Buffer) Reset() {
	b.items = nil
	b.page = 0
}

func (b *Buffer) Items() []Entity {
	return b.items
}

func (b *Buffer) Len() int {
	return len(b.items)
}

// Page is the last page received, 0 for an empty session.
func (b *Buffer) Page() int {
	return b.page
}
