// internal/manor/engine.go
//
// Progression rules for the Haunted Manor.
// Responsibilities:
//   - Reset a player to the parlor (Room).
//   - Check guessed keys and advance parlor → door → hallway → escaped.
//   - Report the current stage without mutating anything (Status).
//
// Notes:
//   - Every mutating operation checks its preconditions and applies its
//     mutation inside one Progress.Update, so concurrent requests for the
//     same player cannot both pass a gate and race the write.
//   - Rejected requests never change state.
//   - Escapes are reported to an optional EscapeRecorder after the state commit.
package manor

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Secret keys, compared case-insensitively and without trimming.
const (
	doorKey   = "knock"
	escapeKey = "truth"
)

// Progress is the storage the engine drives.
type Progress interface {
	Start(ctx context.Context, playerID string)
	Get(ctx context.Context, playerID string) PlayerState
	Update(ctx context.Context, playerID string, fn func(ps *PlayerState) bool)
}

// Escape describes one successful escape.
type Escape struct {
	PlayerID  string
	StartedAt time.Time // zero if the player never entered the parlor
	EscapedAt time.Time
}

// EscapeRecorder receives every successful escape.
type EscapeRecorder interface {
	RecordEscape(ctx context.Context, e Escape) error
}

// Engine applies the manor rules to a Progress store.
type Engine struct {
	progress Progress
	recorder EscapeRecorder
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder reports successful escapes to r.
func WithRecorder(r EscapeRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New constructs an Engine over p.
func New(p Progress, opts ...Option) *Engine {
	e := &Engine{progress: p, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Room resets the player and describes the parlor. Always accepted.
func (e *Engine) Room(ctx context.Context, playerID string) Outcome {
	e.progress.Start(ctx, playerID)
	return accept(parlorNarrative, StatusParlorEntered, parlorInscription, StageParlor)
}

// Door tries to unlock the parlor door with key (nil when absent).
//
// Rules, in order:
//   - Stage must be StageParlor, else door_already_unlocked.
//   - Key must match "knock", else door_locked.
//   - Otherwise the door unlocks and the stage becomes StageDoor.
func (e *Engine) Door(ctx context.Context, playerID string, key *string) Outcome {
	var out Outcome
	e.progress.Update(ctx, playerID, func(ps *PlayerState) bool {
		switch {
		case ps.Stage != StageParlor:
			out = reject(doorAlreadyUnlockedNarrative, StatusDoorAlreadyUnlocked, "", ps.Stage)
			return false
		case !keyMatches(key, doorKey):
			out = reject(doorLockedNarrative, StatusDoorLocked, doorLockedInscription, StageParlor)
			return false
		}
		ps.DoorUnlocked = true
		ps.Stage = StageDoor
		out = accept(doorUnlockedNarrative, StatusDoorUnlocked, doorUnlockedInscription, StageDoor)
		return true
	})
	if out.OK {
		log.Ctx(ctx).Debug().Str("player", playerID).Int("stage", int(StageDoor)).Msg("door unlocked")
	}
	return out
}

// Hallway moves an unlocked player from the door into the hallway.
// The door flag is checked before the stage.
func (e *Engine) Hallway(ctx context.Context, playerID string) Outcome {
	var out Outcome
	e.progress.Update(ctx, playerID, func(ps *PlayerState) bool {
		switch {
		case !ps.DoorUnlocked:
			out = reject(accessDeniedNarrative, StatusAccessDenied, accessDeniedInscription, ps.Stage)
			return false
		case ps.Stage != StageDoor:
			out = reject(hallwayExploredNarrative, StatusHallwayAlreadyExplored, "", ps.Stage)
			return false
		}
		ps.Stage = StageHallway
		out = accept(hallwayEnteredNarrative, StatusHallwayEntered, hallwayEnteredInscription, StageHallway)
		return true
	})
	if out.OK {
		log.Ctx(ctx).Debug().Str("player", playerID).Int("stage", int(StageHallway)).Msg("hallway entered")
	}
	return out
}

// Escape tries to break the curse with key (nil when absent).
//
// Rules, in order:
//   - Stage must be at least StageHallway, else escape_premature.
//   - Key must match "truth", else escape_failed.
//   - Otherwise the stage becomes StageEscaped.
//
// An escaped player may escape again; the stage stays StageEscaped.
func (e *Engine) Escape(ctx context.Context, playerID string, key *string) Outcome {
	var (
		out     Outcome
		started time.Time
	)
	e.progress.Update(ctx, playerID, func(ps *PlayerState) bool {
		switch {
		case ps.Stage < StageHallway:
			out = reject(escapePrematureNarrative, StatusEscapePremature, escapePrematureInscription, ps.Stage)
			return false
		case !keyMatches(key, escapeKey):
			out = reject(escapeFailedNarrative, StatusEscapeFailed, escapeFailedInscription, StageHallway)
			return false
		}
		ps.Stage = StageEscaped
		started = ps.StartedAt
		out = accept(escapedNarrative, StatusEscapedSuccessfully, escapedInscription, StageEscaped)
		return true
	})
	if !out.OK {
		return out
	}

	logger := log.Ctx(ctx)
	logger.Debug().Str("player", playerID).Int("stage", int(StageEscaped)).Msg("escaped")
	if e.recorder != nil {
		esc := Escape{PlayerID: playerID, StartedAt: started, EscapedAt: e.now().UTC()}
		if err := e.recorder.RecordEscape(ctx, esc); err != nil {
			logger.Warn().Err(err).Str("player", playerID).Msg("record escape")
		}
	}
	return out
}

// Status reports the player's stage. It never mutates state.
func (e *Engine) Status(ctx context.Context, playerID string) Outcome {
	stage := e.progress.Get(ctx, playerID).Stage
	status, narrative := statusReport(stage)
	return accept(narrative, status, "", stage)
}

// keyMatches reports whether a guessed key equals want, ignoring case.
// Surrounding whitespace is significant.
func keyMatches(key *string, want string) bool {
	return key != nil && strings.EqualFold(*key, want)
}

func accept(narrative string, status Status, inscription string, stage Stage) Outcome {
	return Outcome{Response: envelope(narrative, status, inscription, stage), OK: true}
}

func reject(narrative string, status Status, inscription string, stage Stage) Outcome {
	return Outcome{Response: envelope(narrative, status, inscription, stage)}
}

// envelope builds a Response; an empty inscription is encoded as null.
func envelope(narrative string, status Status, inscription string, stage Stage) Response {
	r := Response{Narrative: narrative, Status: status, CurrentStage: stage}
	if inscription != "" {
		r.Inscription = &inscription
	}
	return r
}
