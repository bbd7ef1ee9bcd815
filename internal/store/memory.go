// internal/store/memory.go
//
// In-memory progress store: player id → manor.PlayerState.
//
// Characteristics:
//   - One map guarded by one RWMutex (concurrent reads allowed, writes exclusive).
//   - Reads of unknown players return the zero state (parlor, door locked).
//   - Update runs a read-modify-write closure under the write lock, so a
//     precondition check and its mutation can never interleave with another
//     request for the same player.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/escaperoom/internal/manor"
)

// Store defines the progress storage used by the game engine.
type Store interface {
	// Start resets the player to the parlor with the door locked.
	Start(ctx context.Context, playerID string)

	// Stage returns the stored stage, StageParlor if absent.
	Stage(ctx context.Context, playerID string) manor.Stage

	// SetStage stores the given stage.
	SetStage(ctx context.Context, playerID string, stage manor.Stage)

	// DoorUnlocked returns the stored flag, false if absent.
	DoorUnlocked(ctx context.Context, playerID string) bool

	// UnlockDoor marks the parlor door as unlocked.
	UnlockDoor(ctx context.Context, playerID string)

	// Get returns a copy of the player's state (zero value if absent).
	Get(ctx context.Context, playerID string) manor.PlayerState

	// Update applies fn to a copy of the player's state atomically.
	// The copy is written back only if fn returns true.
	Update(ctx context.Context, playerID string, fn func(ps *manor.PlayerState) bool)

	// Len reports how many players have a stored record.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex                 // guards players
	players map[string]manor.PlayerState // keyed by player id
	now     func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{players: make(map[string]manor.PlayerState), now: time.Now}
}

func (m *memory) Start(ctx context.Context, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[playerID] = manor.PlayerState{Stage: manor.StageParlor, StartedAt: m.now().UTC()}
}

func (m *memory) Stage(ctx context.Context, playerID string) manor.Stage {
	return m.Get(ctx, playerID).Stage
}

func (m *memory) SetStage(ctx context.Context, playerID string, stage manor.Stage) {
	m.Update(ctx, playerID, func(ps *manor.PlayerState) bool {
		ps.Stage = stage
		return true
	})
}

func (m *memory) DoorUnlocked(ctx context.Context, playerID string) bool {
	return m.Get(ctx, playerID).DoorUnlocked
}

func (m *memory) UnlockDoor(ctx context.Context, playerID string) {
	m.Update(ctx, playerID, func(ps *manor.PlayerState) bool {
		ps.DoorUnlocked = true
		return true
	})
}

func (m *memory) Get(ctx context.Context, playerID string) manor.PlayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.players[playerID]
}

func (m *memory) Update(ctx context.Context, playerID string, fn func(ps *manor.PlayerState) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := m.players[playerID]
	if fn(&ps) {
		m.players[playerID] = ps
	}
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
