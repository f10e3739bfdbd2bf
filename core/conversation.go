package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Role identifies which side of the dialogue a turn entry belongs to.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one transcript entry. Turns are immutable once appended.
type Turn struct {
	ID   string
	Role Role
	Text string
}

// Conversation is a point-in-time view of the session: the transcript so far
// plus the live status vector.
type Conversation struct {
	Turns  []Turn
	Status Status
}

// conversationLog is the append-only transcript. Entries are appended only by
// the session's dispatch loop; the lock exists so snapshots can be taken from
// any goroutine.
type conversationLog struct {
	mu sync.RWMutex

	turns []Turn
}

// append adds a turn and returns it. Existing entries are never mutated or
// removed.
func (l *conversationLog) append(role Role, text string) Turn {
	turn := Turn{ID: uuid.NewString(), Role: role, Text: text}

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	l.mu.Unlock()

	return turn
}

func (l *conversationLog) length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// snapshot returns a deep copy of the transcript so callers can hold on to it
// without observing later appends.
func (l *conversationLog) snapshot() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	turns := []Turn{}
	if err := copier.Copy(&turns, &l.turns); err != nil {
		// copier only fails on invalid destinations; fall back to a shallow
		// copy rather than returning nothing.
		turns = append([]Turn(nil), l.turns...)
	}
	return turns
}
