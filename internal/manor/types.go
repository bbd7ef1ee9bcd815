// internal/manor/types.go
//
// Core type definitions for the Haunted Manor escape room.
// Defines:
//   - Stage: how far a player has progressed (parlor → door → hallway → escaped).
//   - PlayerState: the per-player record held by the progress store.
//   - Response: the envelope returned by every game endpoint.
//   - Status tags used in Response.Status.

package manor

import "time"

// Stage is a player's position in the manor.
// Possible values:
//   - StageParlor:   just entered (or reset by /room).
//   - StageDoor:     the parlor door has been unlocked.
//   - StageHallway:  the hallway has been explored.
//   - StageEscaped:  the curse is broken; terminal.
type Stage int

const (
	StageParlor  Stage = 0
	StageDoor    Stage = 1
	StageHallway Stage = 2
	StageEscaped Stage = 3
)

// PlayerState holds the progress of a single player.
type PlayerState struct {
	Stage        Stage     // Current stage.
	DoorUnlocked bool      // Set when the door is opened; never reverts until /room.
	StartedAt    time.Time // Time of the last /room; zero if the player never entered.
}

// Status is the machine-readable tag carried in every Response.
type Status string

const (
	StatusParlorEntered          Status = "parlor_entered"
	StatusDoorUnlocked           Status = "door_unlocked"
	StatusDoorLocked             Status = "door_locked"
	StatusDoorAlreadyUnlocked    Status = "door_already_unlocked"
	StatusHallwayEntered         Status = "hallway_entered"
	StatusAccessDenied           Status = "access_denied"
	StatusHallwayAlreadyExplored Status = "hallway_already_explored"
	StatusEscapedSuccessfully    Status = "escaped_successfully"
	StatusEscapePremature        Status = "escape_premature"
	StatusEscapeFailed           Status = "escape_failed"
	StatusInParlor               Status = "in_parlor"
	StatusInHallway              Status = "in_hallway"
	StatusEscaped                Status = "escaped"
	StatusLost                   Status = "lost"
)

// Response is the uniform envelope returned by every game endpoint.
// Inscription is nil when the house has nothing to add.
type Response struct {
	Narrative    string  `json:"narrative"`
	Status       Status  `json:"status"`
	Inscription  *string `json:"inscription"`
	CurrentStage Stage   `json:"currentStage"`
}

// Outcome pairs a Response with whether the request was accepted.
// A rejected outcome maps to HTTP 400; nothing was mutated.
type Outcome struct {
	Response Response
	OK       bool
}
