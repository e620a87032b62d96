package adminapi

// Product is an admin-visible product row.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateProductResult confirms product creation.
type CreateProductResult struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ProcessingStatus reports PDF processing progress for a product.
type ProcessingStatus struct {
	Stage       string  `json:"stage"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	Progress    float64 `json:"progress"`
	Message     string  `json:"message"`
}

// Terminal reports whether the processing run has finished.
func (s ProcessingStatus) Terminal() bool {
	return s.Stage == StageComplete || s.Stage == StageError
}

// Processing stages reported by the backend.
const (
	StageIdle      = "idle"
	StageAnalyzing = "analyzing"
	StageComplete  = "complete"
	StageError     = "error"
)

// PDFInfo describes the uploaded source PDF for a product.
type PDFInfo struct {
	Exists   bool   `json:"exists"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// Image is an extracted image with its soft-delete status.
type Image struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	IsDeleted bool   `json:"is_deleted"`
}

// User is a registered end user.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	RegisteredAt string `json:"registered_at"`
	LastActive   string `json:"last_active"`
}

// ChatMessage is one stored chat turn for a user.
type ChatMessage struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// DailyCount buckets event counts per day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AnalyticsSummary is the dashboard aggregate.
type AnalyticsSummary struct {
	TotalUsers         int          `json:"total_users"`
	TotalChats         int          `json:"total_chats"`
	UsersToday         int          `json:"users_today"`
	ChatsToday         int          `json:"chats_today"`
	PresentationStarts int          `json:"presentation_starts"`
	DailyActivity      []DailyCount `json:"daily_activity"`
	UserGrowth         []DailyCount `json:"user_growth"`
}

// ActivityEvent is one recent analytics event.
type ActivityEvent struct {
	ID        int64  `json:"id"`
	EventType string `json:"event_type"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
}

// Settings is the raw key/value settings map the admin API exposes.
type Settings map[string]string

// SettingsUpdate carries the editable settings fields.
type SettingsUpdate struct {
	TTSVoice          *string `json:"tts_voice,omitempty"`
	TTSEnabled        *string `json:"tts_enabled,omitempty"`
	PresentationSpeed *string `json:"presentation_speed,omitempty"`
	SectionDelay      *string `json:"section_delay,omitempty"`
}

// LoginResult carries the issued admin token.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
