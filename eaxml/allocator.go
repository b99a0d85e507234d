package eaxml

import (
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the timestamp format of the date columns.
const DateLayout = "2006-01-02 15:04:05"

// Allocator hands out the identity of exported rows: GUIDs, sequential IDs
// shared by all tables, and timestamps. One Allocator serves one export run.
type Allocator struct {
	next  int
	clock func() time.Time
	rand  io.Reader
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithClock sets the time source of the date columns.
func WithClock(clock func() time.Time) AllocatorOption {
	return func(a *Allocator) {
		a.clock = clock
	}
}

// WithRandom sets the entropy source of generated GUIDs.
func WithRandom(r io.Reader) AllocatorOption {
	return func(a *Allocator) {
		a.rand = r
	}
}

// NewAllocator returns an allocator whose first sequential ID is 1.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GUID returns a fresh identifier in braces, e.g. "{0f8fad5b-d9cb-469f-a165-70867728950e}".
func (a *Allocator) GUID() string {
	var id uuid.UUID
	if a.rand == nil {
		id = uuid.New()
	} else {
		id = uuid.Must(uuid.NewRandomFromReader(a.rand))
	}
	return "{" + id.String() + "}"
}

// ID returns the next sequential ID.
func (a *Allocator) ID() string {
	a.next++
	return strconv.Itoa(a.next)
}

// Last returns the most recently allocated sequential ID, or 0.
func (a *Allocator) Last() int { return a.next }

// Date returns the current time formatted with DateLayout.
func (a *Allocator) Date() string {
	return a.clock().Format(DateLayout)
}
