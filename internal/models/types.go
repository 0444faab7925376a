package models

// Document is an uploaded file before text extraction
type Document struct {
	Filename string
	Data     []byte
}

// Chunk represents an indexed piece of the extracted text
type Chunk struct {
	ID      string  `json:"id"`
	Ord     int     `json:"ord"`
	Content string  `json:"content"`
	Score   float32 `json:"score,omitempty"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a role tagged chat message sent to the model
type Message struct {
	Role    Role
	Content string
}

// Turn is one answered question in the conversation history.
type Turn struct {
	Question string
	Answer   string
}

// TranscriptEntry is one rendered message of the chat transcript.
type TranscriptEntry struct {
	Role    Role    `json:"role"`
	Content string  `json:"content"`
	Failed  bool    `json:"failed,omitempty"`
	Sources []Chunk `json:"sources,omitempty"`
}

type PromptResponse struct {
	Query   string  `json:"query"`
	Sources []Chunk `json:"sources"`
	Content string  `json:"content"`
}

// ProcessStats summarizes the last successful Process action
type ProcessStats struct {
	Documents int      `json:"documents"`
	Chars     int      `json:"chars"`
	Chunks    int      `json:"chunks"`
	Warnings  []string `json:"warnings,omitempty"`
}
