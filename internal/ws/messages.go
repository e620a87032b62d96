package ws

// Client actions accepted by the presentation socket.
const (
	ActionPlay        = "play"
	ActionPause       = "pause"
	ActionResume      = "resume"
	ActionNext        = "next"
	ActionStop        = "stop"
	ActionSectionDone = "section_done"
)

// Server message types pushed over the presentation socket.
const (
	TypeStart       = "start"
	TypeSection     = "section"
	TypeStatus      = "status"
	TypeInterrupted = "interrupted"
	TypeComplete    = "complete"
	TypeStopped     = "stopped"
	TypeError       = "error"
)

// Action is a client-to-server command.
type Action struct {
	Action string `json:"action"`
}

// Message is a server-to-client presentation event. Fields are populated
// according to Type; a section message carries the full section payload.
type Message struct {
	Type          string   `json:"type"`
	Title         string   `json:"title,omitempty"`
	TotalSections int      `json:"total_sections,omitempty"`
	SectionIndex  int      `json:"section_index,omitempty"`
	Content       string   `json:"content,omitempty"`
	Images        []string `json:"images,omitempty"`
	KeyTakeaways  []string `json:"key_takeaways,omitempty"`
	Status        string   `json:"status,omitempty"`
	Message       string   `json:"message,omitempty"`
}
