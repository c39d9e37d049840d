package storage

import "time"

// Document is an uploaded file and its extracted text.
type Document struct {
	ID          string // UUID
	Name        string // Original file name
	FilePath    string // Path relative to the media root
	ContentType string
	Content     string // Extracted text, immutable after upload
	Tags        []string
	CreatedAt   time.Time
}

// ModuleKind is the kind of a prompt module.
type ModuleKind string

const (
	KindPhilosophy ModuleKind = "philosophy"
	KindPersona    ModuleKind = "persona"
	KindVoice      ModuleKind = "voice"
	KindTone       ModuleKind = "tone"
)

// ModuleKinds lists every module kind in composition order.
func ModuleKinds() []ModuleKind {
	return []ModuleKind{KindPhilosophy, KindPersona, KindVoice, KindTone}
}

// Valid reports whether k is a known kind.
func (k ModuleKind) Valid() bool {
	switch k {
	case KindPhilosophy, KindPersona, KindVoice, KindTone:
		return true
	}
	return false
}

// PromptModule is a prompt module record. The text lives in the file at FilePath.
type PromptModule struct {
	ID        int64
	Kind      ModuleKind
	Title     string
	FilePath  string // Path relative to the media root
	IsGlobal  bool   // Only meaningful for philosophies
	CreatedAt time.Time
}

// Session is a chat session owned by one user.
type Session struct {
	ID        int64
	UserID    int64
	Title     string // Empty until the first query
	CreatedAt time.Time
}

// MessageRole is the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one chat turn.
type Message struct {
	ID        int64
	SessionID int64
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}

// Role is a user's access role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}
