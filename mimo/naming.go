package mimo

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator names systems. Names are independent of the system content.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates time-sortable UUIDv7 names. It is stateless and
// safe for concurrent use.
type UUIDGenerator struct{}

// Generate panics if the UUID cannot be generated (should never happen in
// practice).
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns Prefix followed by a monotonic counter starting
// at 1: "sys-0001", "sys-0002", ...
type SequenceGenerator struct {
	Prefix string

	mu   sync.Mutex
	next uint64
}

// NewSequenceGenerator returns a counter based generator.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%04d", g.Prefix, g.next)
}

// FixedGenerator returns the caller supplied name every time.
type FixedGenerator string

func (g FixedGenerator) Generate() string {
	return string(g)
}

// TimestampLayout names a system after the wall clock, one name per second.
const TimestampLayout = "2006-01-02_15-04-05"

// TimestampGenerator names systems after the current time. Two systems
// created within the same second get the same name.
type TimestampGenerator struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

func (g TimestampGenerator) Generate() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return now().Format(TimestampLayout)
}
