package manor

// Prose returned in Response.Narrative and Response.Inscription.
const (
	parlorNarrative = "You open your eyes to a dimly lit parlor. The fire in the chimney is cold, and a portrait watches you from the wall. " +
		"Dust particles float in the stale air, catching what little light filters through the grimy windows. " +
		"The floorboards creak beneath your feet. A message is carved into the wooden table."
	parlorInscription = "\"Only those who listen to the house will find the way out.\""

	doorAlreadyUnlockedNarrative = "You've already passed through this door. The way forward lies elsewhere."
	doorLockedNarrative          = "You whisper the wrong word. The silence grows heavier. Something moves in the dark behind you. " +
		"A cold breath touches the back of your neck. The house is watching... waiting."
	doorLockedInscription = "Listen to the house. What does it want you to do?"
	doorUnlockedNarrative = "You knock three times. The sound echoes through the empty house like thunder. " +
		"A loud creak echoes through the house. The door slowly opens to a candlelit hallway, " +
		"revealing flickering shadows that dance along the walls."
	doorUnlockedInscription = "Continue your journey with GET /hallway"

	accessDeniedNarrative = "The door to the hallway is locked. You cannot proceed without unlocking it first. " +
		"The house whispers: 'You must earn your passage...'"
	accessDeniedInscription    = "Return to the parlor and unlock the door."
	hallwayExploredNarrative   = "You've already explored this hallway. The way forward lies at the end of your journey."
	hallwayEnteredNarrative    = "🕯️ The hallway stretches endlessly before you. Candles flicker as you pass, though there's no breeze. " +
		"Portraits of long-dead family members line the walls, their eyes seeming to follow your every move. " +
		"One painting has eyes that seem particularly alive, almost... knowing. " +
		"Beneath it, a small box sits on a dusty table, locked with an ornate mechanism. " +
		"An inscription glows faintly in the candlelight."
	hallwayEnteredInscription = "\"Truth opens what fear locks.\""

	escapePrematureNarrative = "⛔ You cannot escape yet. You haven't explored enough of the manor. " +
		"The house won't let you leave so easily. Dark whispers fill your ears: 'Not yet... not yet...'"
	escapePrematureInscription = "Complete your journey through the manor first."
	escapeFailedNarrative      = "😈 A ghostly laughter echoes through the house, growing louder and more sinister. " +
		"You weren't ready. The door slams shut again with a deafening bang. " +
		"The candles extinguish one by one. In the darkness, you hear footsteps... " +
		"approaching... closer... closer... Then silence. " +
		"The curse remains unbroken."
	escapeFailedInscription = "The house demands truth. What is the key to breaking the curse?"
	escapedNarrative        = "You speak the word 'truth' into the silence. The house shudders violently. " +
		"The portraits begin to smile, their eyes closing peacefully for the first time in centuries. " +
		"The manor trembles as the walls begin to fade like morning mist. " +
		"Light floods through dissolving windows. You step into the moonlight — free at last. " +
		"Behind you, Blackwood Manor crumbles into silvery mist, its spirits finally released. " +
		"The curse is broken."
	escapedInscription = "Congratulations! You have survived the Haunting of Blackwood Manor!"
)

// statusReport maps a stage to the /status tag and its summary of the next step.
func statusReport(s Stage) (Status, string) {
	switch s {
	case StageParlor:
		return StatusInParlor, "You are in the parlor. The door awaits. POST to /door with the correct key."
	case StageDoor:
		return StatusDoorUnlocked, "You've unlocked the door. Use GET /hallway to continue your journey."
	case StageHallway:
		return StatusInHallway, "You're in the hallway. The final challenge awaits. POST to /escape with the key to freedom."
	case StageEscaped:
		return StatusEscaped, "You have escaped Blackwood Manor! The nightmare is over."
	default:
		return StatusLost, "Unknown location. The house is confused..."
	}
}
