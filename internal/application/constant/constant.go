package constant

// Shared slog attribute keys.
const (
	Error     = "error"
	RoomID    = "room_id"
	SessionID = "session_id"
	FileID    = "file_id"
	Plan      = "plan"
)
