// Package store persists the transcripts of completed exchanges,
// keyed by the tenant and chat IDs carried in the chatmodel.ChatContext.
package store

import (
	"context"
	"time"

	"github.com/bibbit-ltd/tool-use/pkg/llms"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/bibbit-ltd/tool-use", "store")

// DefaultMaxMessages is the number of most recent messages kept per chat.
const DefaultMaxMessages = 100

// DefaultChatTitle is the title of a chat created implicitly.
const DefaultChatTitle = "New Chat"

// ChatInfo describes a stored chat.
type ChatInfo struct {
	TenantID  string         `json:"tenant_id"`
	ChatID    string         `json:"chat_id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Messages  []llms.Message `json:"messages,omitempty"`
}

// MessageStore stores messages of the chat identified by the context.
type MessageStore interface {
	// Messages returns the stored messages in order.
	Messages(ctx context.Context) []llms.Message
	// Add appends the messages.
	Add(ctx context.Context, msgs ...llms.Message) error
	// Reset deletes the chat.
	Reset(ctx context.Context) error
}

// MessageStoreManager extends MessageStore with chat management.
type MessageStoreManager interface {
	MessageStore
	// UpdateChat creates or updates the chat with the title and metadata.
	// Empty title and nil metadata keep the current values.
	UpdateChat(ctx context.Context, title string, metadata map[string]any) error
	// ListChats returns the chat IDs of the tenant.
	ListChats(ctx context.Context) ([]string, error)
	// GetChatInfo returns the chat with messages,
	// empty id means the chat from the context.
	GetChatInfo(ctx context.Context, id string) (*ChatInfo, error)
}
