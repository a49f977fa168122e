// Package idx issues ULIDs for request and audit event identifiers.
// Accounts themselves are keyed by UUID.
package idx

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a canonical, time-sortable ULID string.
type ID string

// Generator issues strictly increasing IDs, also within one millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator reads entropy from r; tests may pass a deterministic reader.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(r, 0)}
}

// NewAt issues an ID stamped with t.
func (g *Generator) NewAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}

var defaultGenerator = sync.OnceValue(func() *Generator {
	return NewGenerator(rand.Reader)
})

// New issues an ID stamped with the current time.
func New() ID { return defaultGenerator().NewAt(time.Now()) }

func (id ID) String() string { return string(id) }
