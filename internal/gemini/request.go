package gemini

import "github.com/lucianommartins/terminal-tutor/internal/session"

// buildContents composes the wire payload for both blocking and streaming
// calls: the session history (possibly empty) followed by the new user turn.
// The passed-in history is never mutated; callers commit the new turn to the
// store separately, and only after a successful response. Instruction text
// rides inside the user turn because the protocol only knows user and model
// roles.
func buildContents(history []session.Turn, prompt string) []session.Turn {
	contents := make([]session.Turn, 0, len(history)+1)
	contents = append(contents, history...)
	return append(contents, session.NewTurn(session.RoleUser, prompt))
}
