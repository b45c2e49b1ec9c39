package forum

import "errors"

// The four ways a forum operation fails, as seen by callers. Services
// wrap these with context via fmt.Errorf("...: %w", ...), and the API
// layer maps them to HTTP status codes with errors.Is — no other layer
// inspects error strings.
var (
	// ErrNotFound: the referenced server/channel/conversation/message/
	// invite code does not exist (or is hidden behind a tombstone).
	ErrNotFound = errors.New("not found")

	// ErrForbidden: the caller lacks the required member role or is not
	// a participant of the conversation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict: a uniqueness violation (invite code, conversation
	// pair, member pair). Recoverable by regenerate/retry; conversation
	// races never surface this to callers.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput: malformed ids, empty message bodies, reserved
	// channel names, and similar caller mistakes.
	ErrInvalidInput = errors.New("invalid input")
)

// DeletedPlaceholder is what a tombstoned message's content becomes.
// Clients render it in place so scroll position stays stable.
const DeletedPlaceholder = "This message has been deleted."
