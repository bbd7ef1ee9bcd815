package manor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/escaperoom/internal/manor"
	"github.com/robalobadob/escaperoom/internal/store"
)

func key(s string) *string { return &s }

// recorder captures escapes; err is returned from every call.
type recorder struct {
	mu      sync.Mutex
	escapes []manor.Escape
	err     error
}

func (r *recorder) RecordEscape(_ context.Context, e manor.Escape) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.escapes = append(r.escapes, e)
	return r.err
}

func newEngine(t *testing.T, opts ...manor.Option) (*manor.Engine, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	return manor.New(st, opts...), st
}

// advance drives p to the given stage through the public rules.
func advance(t *testing.T, e *manor.Engine, p string, to manor.Stage) {
	t.Helper()
	ctx := context.Background()
	require.True(t, e.Room(ctx, p).OK)
	if to >= manor.StageDoor {
		require.True(t, e.Door(ctx, p, key("knock")).OK)
	}
	if to >= manor.StageHallway {
		require.True(t, e.Hallway(ctx, p).OK)
	}
	if to >= manor.StageEscaped {
		require.True(t, e.Escape(ctx, p, key("truth")).OK)
	}
}

func TestRoom(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()
	advance(t, e, "p", manor.StageEscaped)

	first := e.Room(ctx, "p")
	second := e.Room(ctx, "p")

	assert.True(t, first.OK)
	assert.Equal(t, manor.StatusParlorEntered, first.Response.Status)
	assert.Equal(t, manor.StageParlor, first.Response.CurrentStage)
	require.NotNil(t, first.Response.Inscription)
	assert.Contains(t, *first.Response.Inscription, "Only those who listen to the house will find the way out.")
	assert.Equal(t, first, second)

	assert.Equal(t, manor.StageParlor, st.Stage(ctx, "p"))
	assert.False(t, st.DoorUnlocked(ctx, "p"))
}

func TestDoor(t *testing.T) {
	tests := []struct {
		name       string
		from       manor.Stage
		fresh      bool
		key        *string
		wantOK     bool
		wantStatus manor.Status
		wantStage  manor.Stage
	}{
		{name: "correct key", from: manor.StageParlor, key: key("knock"), wantOK: true, wantStatus: manor.StatusDoorUnlocked, wantStage: manor.StageDoor},
		{name: "uppercase key", from: manor.StageParlor, key: key("KNOCK"), wantOK: true, wantStatus: manor.StatusDoorUnlocked, wantStage: manor.StageDoor},
		{name: "mixed case key", from: manor.StageParlor, key: key("KnOcK"), wantOK: true, wantStatus: manor.StatusDoorUnlocked, wantStage: manor.StageDoor},
		{name: "fresh player", fresh: true, key: key("knock"), wantOK: true, wantStatus: manor.StatusDoorUnlocked, wantStage: manor.StageDoor},
		{name: "wrong key", from: manor.StageParlor, key: key("open"), wantStatus: manor.StatusDoorLocked, wantStage: manor.StageParlor},
		{name: "missing key", from: manor.StageParlor, key: nil, wantStatus: manor.StatusDoorLocked, wantStage: manor.StageParlor},
		{name: "whitespace is significant", from: manor.StageParlor, key: key(" knock "), wantStatus: manor.StatusDoorLocked, wantStage: manor.StageParlor},
		{name: "already unlocked", from: manor.StageDoor, key: key("knock"), wantStatus: manor.StatusDoorAlreadyUnlocked, wantStage: manor.StageDoor},
		{name: "replay after escape", from: manor.StageEscaped, key: key("knock"), wantStatus: manor.StatusDoorAlreadyUnlocked, wantStage: manor.StageEscaped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, st := newEngine(t)
			ctx := context.Background()
			if !tt.fresh {
				advance(t, e, "p", tt.from)
			}
			wasUnlocked := st.DoorUnlocked(ctx, "p")

			out := e.Door(ctx, "p", tt.key)

			assert.Equal(t, tt.wantOK, out.OK)
			assert.Equal(t, tt.wantStatus, out.Response.Status)
			assert.Equal(t, tt.wantStage, out.Response.CurrentStage)
			assert.Equal(t, tt.wantStage, st.Stage(ctx, "p"))
			if tt.wantOK {
				assert.True(t, st.DoorUnlocked(ctx, "p"))
			} else {
				assert.Equal(t, wasUnlocked, st.DoorUnlocked(ctx, "p"))
			}
			if tt.wantStatus == manor.StatusDoorAlreadyUnlocked {
				assert.Nil(t, out.Response.Inscription)
			}
		})
	}
}

func TestHallway(t *testing.T) {
	tests := []struct {
		name       string
		from       manor.Stage
		wantOK     bool
		wantStatus manor.Status
		wantStage  manor.Stage
	}{
		{name: "door locked", from: manor.StageParlor, wantStatus: manor.StatusAccessDenied, wantStage: manor.StageParlor},
		{name: "door unlocked", from: manor.StageDoor, wantOK: true, wantStatus: manor.StatusHallwayEntered, wantStage: manor.StageHallway},
		{name: "already explored", from: manor.StageHallway, wantStatus: manor.StatusHallwayAlreadyExplored, wantStage: manor.StageHallway},
		{name: "after escape", from: manor.StageEscaped, wantStatus: manor.StatusHallwayAlreadyExplored, wantStage: manor.StageEscaped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, st := newEngine(t)
			ctx := context.Background()
			advance(t, e, "p", tt.from)

			out := e.Hallway(ctx, "p")

			assert.Equal(t, tt.wantOK, out.OK)
			assert.Equal(t, tt.wantStatus, out.Response.Status)
			assert.Equal(t, tt.wantStage, out.Response.CurrentStage)
			assert.Equal(t, tt.wantStage, st.Stage(ctx, "p"))
		})
	}
}

func TestHallway_DoorCheckedBeforeStage(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()
	st.SetStage(ctx, "p", manor.StageDoor)

	out := e.Hallway(ctx, "p")

	assert.False(t, out.OK)
	assert.Equal(t, manor.StatusAccessDenied, out.Response.Status)
	assert.Equal(t, manor.StageDoor, out.Response.CurrentStage)
	assert.Equal(t, manor.StageDoor, st.Stage(ctx, "p"))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name       string
		from       manor.Stage
		key        *string
		wantOK     bool
		wantStatus manor.Status
		wantStage  manor.Stage
	}{
		{name: "premature in parlor", from: manor.StageParlor, key: key("truth"), wantStatus: manor.StatusEscapePremature, wantStage: manor.StageParlor},
		{name: "premature at door", from: manor.StageDoor, key: key("truth"), wantStatus: manor.StatusEscapePremature, wantStage: manor.StageDoor},
		{name: "wrong key", from: manor.StageHallway, key: key("fear"), wantStatus: manor.StatusEscapeFailed, wantStage: manor.StageHallway},
		{name: "missing key", from: manor.StageHallway, key: nil, wantStatus: manor.StatusEscapeFailed, wantStage: manor.StageHallway},
		{name: "correct key", from: manor.StageHallway, key: key("truth"), wantOK: true, wantStatus: manor.StatusEscapedSuccessfully, wantStage: manor.StageEscaped},
		{name: "uppercase key", from: manor.StageHallway, key: key("TRUTH"), wantOK: true, wantStatus: manor.StatusEscapedSuccessfully, wantStage: manor.StageEscaped},
		{name: "escape again", from: manor.StageEscaped, key: key("truth"), wantOK: true, wantStatus: manor.StatusEscapedSuccessfully, wantStage: manor.StageEscaped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, st := newEngine(t)
			ctx := context.Background()
			advance(t, e, "p", tt.from)

			out := e.Escape(ctx, "p", tt.key)

			assert.Equal(t, tt.wantOK, out.OK)
			assert.Equal(t, tt.wantStatus, out.Response.Status)
			assert.Equal(t, tt.wantStage, out.Response.CurrentStage)
			assert.Equal(t, tt.wantStage, st.Stage(ctx, "p"))
		})
	}
}

func TestEscape_Recorder(t *testing.T) {
	start := time.Date(2026, 10, 31, 23, 0, 0, 0, time.UTC)
	rec := &recorder{}
	e, _ := newEngine(t,
		manor.WithRecorder(rec),
		manor.WithClock(func() time.Time { return start.Add(time.Minute) }),
	)
	ctx := context.Background()

	assert.False(t, e.Escape(ctx, "p", key("truth")).OK)
	advance(t, e, "p", manor.StageHallway)
	assert.False(t, e.Escape(ctx, "p", key("nope")).OK)
	assert.Empty(t, rec.escapes, "rejected escapes are not recorded")

	assert.True(t, e.Escape(ctx, "p", key("truth")).OK)

	require.Len(t, rec.escapes, 1)
	assert.Equal(t, "p", rec.escapes[0].PlayerID)
	assert.False(t, rec.escapes[0].StartedAt.IsZero())
	assert.Equal(t, start.Add(time.Minute), rec.escapes[0].EscapedAt)
}

func TestEscape_RecorderFailureStillEscapes(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	e, st := newEngine(t, manor.WithRecorder(rec))
	ctx := context.Background()
	advance(t, e, "p", manor.StageHallway)

	out := e.Escape(ctx, "p", key("truth"))

	assert.True(t, out.OK)
	assert.Equal(t, manor.StageEscaped, st.Stage(ctx, "p"))
	assert.Len(t, rec.escapes, 1)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		stage manor.Stage
		want  manor.Status
	}{
		{manor.StageParlor, manor.StatusInParlor},
		{manor.StageDoor, manor.StatusDoorUnlocked},
		{manor.StageHallway, manor.StatusInHallway},
		{manor.StageEscaped, manor.StatusEscaped},
		{manor.Stage(7), manor.StatusLost},
		{manor.Stage(-1), manor.StatusLost},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			e, st := newEngine(t)
			ctx := context.Background()
			st.SetStage(ctx, "p", tt.stage)

			first := e.Status(ctx, "p")
			second := e.Status(ctx, "p")

			assert.True(t, first.OK)
			assert.Equal(t, tt.want, first.Response.Status)
			assert.Equal(t, tt.stage, first.Response.CurrentStage)
			assert.Nil(t, first.Response.Inscription)
			assert.NotEmpty(t, first.Response.Narrative)
			assert.Equal(t, first, second)
		})
	}
}

func TestStatus_UnknownPlayerIsParlor(t *testing.T) {
	e, st := newEngine(t)

	out := e.Status(context.Background(), "stranger")

	assert.Equal(t, manor.StatusInParlor, out.Response.Status)
	assert.Equal(t, 0, st.Len())
}

func TestDoor_ConcurrentCorrectKeys(t *testing.T) {
	e, st := newEngine(t)
	ctx := context.Background()
	advance(t, e, "p", manor.StageParlor)

	const workers = 32
	results := make(chan manor.Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- e.Door(ctx, "p", key("knock"))
		}()
	}
	wg.Wait()
	close(results)

	var unlocked, already int
	for out := range results {
		switch out.Response.Status {
		case manor.StatusDoorUnlocked:
			unlocked++
		case manor.StatusDoorAlreadyUnlocked:
			already++
		}
	}
	assert.Equal(t, 1, unlocked)
	assert.Equal(t, workers-1, already)
	assert.Equal(t, manor.StageDoor, st.Stage(ctx, "p"))
	assert.True(t, st.DoorUnlocked(ctx, "p"))
}
