package engine

import (
	"fmt"

	list "github.com/bahlo/generic-list-go"
)

// UndoLog is a bounded history of committed moves. Pushing onto a full log
// discards the oldest entry.
type UndoLog struct {
	entries  *list.List[UndoEntry]
	capacity int
}

// NewUndoLog creates a log holding at most capacity entries.
// A non-positive capacity selects DefaultUndoCapacity.
func NewUndoLog(capacity int) *UndoLog {
	if capacity <= 0 {
		capacity = DefaultUndoCapacity
	}
	return &UndoLog{entries: list.New[UndoEntry](), capacity: capacity}
}

// Push records an entry as the most recent one
func (l *UndoLog) Push(entry UndoEntry) {
	if l.entries.Len() >= l.capacity {
		l.entries.Remove(l.entries.Back())
	}
	l.entries.PushFront(entry)
}

// Pop removes and returns the most recent entry
func (l *UndoLog) Pop() (UndoEntry, bool) {
	front := l.entries.Front()
	if front == nil {
		return UndoEntry{}, false
	}
	return l.entries.Remove(front), true
}

// Peek returns the most recent entry without removing it
func (l *UndoLog) Peek() (UndoEntry, bool) {
	front := l.entries.Front()
	if front == nil {
		return UndoEntry{}, false
	}
	return front.Value, true
}

// Len returns the number of stored entries
func (l *UndoLog) Len() int {
	return l.entries.Len()
}

// Cap returns the maximum number of entries
func (l *UndoLog) Cap() int {
	return l.capacity
}

// IsEmpty reports whether there is nothing to undo
func (l *UndoLog) IsEmpty() bool {
	return l.entries.Len() == 0
}

// Clear drops every entry
func (l *UndoLog) Clear() {
	l.entries.Init()
}

// Entries returns the stored entries from oldest to newest
func (l *UndoLog) Entries() []UndoEntry {
	out := make([]UndoEntry, 0, l.entries.Len())
	for e := l.entries.Back(); e != nil; e = e.Prev() {
		out = append(out, e.Value)
	}
	return out
}

// Undo reverts the most recent entry in log by replaying its inverse
// displacement on the player and then on the pushed baggage.
// It returns false when the log is empty.
func Undo(log *UndoLog, b *Board) (bool, error) {
	if log == nil || b == nil {
		return false, fmt.Errorf("undo: nil log or board: %w", ErrInvalidArgument)
	}
	entry, ok := log.Pop()
	if !ok {
		return false, nil
	}

	if err := expect(b, entry.Player, Player); err != nil {
		return false, err
	}
	if !b.InBounds(entry.Player.Add(entry.Inverse)) {
		return false, fmt.Errorf("undo: player destination: %w", ErrOutOfBounds)
	}
	if entry.Baggage != nil {
		if err := expect(b, *entry.Baggage, Baggage); err != nil {
			return false, err
		}
		if !b.InBounds(entry.Baggage.Add(entry.Inverse)) {
			return false, fmt.Errorf("undo: baggage destination: %w", ErrOutOfBounds)
		}
	}

	if err := b.Swap(entry.Player, entry.Player.Add(entry.Inverse)); err != nil {
		return false, err
	}
	if entry.Baggage != nil {
		if err := b.Swap(*entry.Baggage, entry.Baggage.Add(entry.Inverse)); err != nil {
			return false, err
		}
	}
	return true, nil
}

func expect(b *Board, p Position, kind Kind) error {
	if !b.InBounds(p) {
		return fmt.Errorf("undo: %s at (%d,%d): %w: %w", kind, p.Row, p.Col, ErrInvalidArgument, ErrOutOfBounds)
	}
	if got := b.At(p); got != kind {
		return fmt.Errorf("undo: expected %s at (%d,%d), found %s: %w", kind, p.Row, p.Col, got, ErrInvalidArgument)
	}
	return nil
}
