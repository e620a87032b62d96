package api

// Product is the public product listing entry.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Section is one narrated unit of presentation content.
type Section struct {
	Index        int      `json:"index"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Images       []string `json:"images"`
	KeyTakeaways []string `json:"key_takeaways"`
}

// Presentation is the payload returned by /api/presentation/load.
type Presentation struct {
	Status    string         `json:"status"`
	Title     string         `json:"title"`
	Sections  int            `json:"sections"`
	Data      []Section      `json:"section_data"`
	Metadata  map[string]any `json:"metadata"`
	ProductID int64          `json:"product_id"`
	Message   string         `json:"message"`
}

// Reference points at source pages surfaced alongside a chat answer.
type Reference struct {
	Page   int      `json:"page"`
	Images []string `json:"images"`
}

// ChatResponse is the answer to a chat message.
type ChatResponse struct {
	Response   string      `json:"response"`
	References []Reference `json:"references"`
	Status     string      `json:"status"`
}

// Extraction is the result of server-side field extraction/validation.
type Extraction struct {
	Extracted string `json:"extracted"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error"`
}

// Settings are the server-published playback defaults.
type Settings struct {
	TTSVoice          string  `json:"ttsVoice"`
	TTSEnabled        bool    `json:"ttsEnabled"`
	PresentationSpeed float64 `json:"presentationSpeed"`
	SectionDelay      float64 `json:"sectionDelay"`
}

// RegisterResult confirms a completed registration.
type RegisterResult struct {
	Status string `json:"status"`
	UserID int64  `json:"user_id"`
}
