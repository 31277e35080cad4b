package store

import (
	"context"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/bibbit-ltd/tool-use/chatmodel"
	"github.com/bibbit-ltd/tool-use/pkg/llms"
)

type memoryChat struct {
	info     ChatInfo
	messages []llms.Message
}

type inMemory struct {
	mu          sync.RWMutex
	maxMessages int
	chats       map[string]*memoryChat
}

// NewMemoryStore returns a MessageStoreManager that keeps chats in process memory.
func NewMemoryStore() MessageStoreManager {
	return &inMemory{
		maxMessages: DefaultMaxMessages,
		chats:       make(map[string]*memoryChat),
	}
}

func memoryKey(tenantID, chatID string) string {
	return path.Join(tenantID, chatID)
}

func (m *inMemory) Messages(ctx context.Context) []llms.Message {
	tenantID, chatID, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.chats[memoryKey(tenantID, chatID)]; ok {
		return slices.Clone(c.messages)
	}
	return nil
}

func (m *inMemory) Add(ctx context.Context, msgs ...llms.Message) error {
	tenantID, chatID, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.getOrCreate(tenantID, chatID)
	c.messages = append(c.messages, msgs...)
	if over := len(c.messages) - m.maxMessages; over > 0 {
		c.messages = slices.Clone(c.messages[over:])
	}
	c.info.UpdatedAt = time.Now()
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	tenantID, chatID, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, memoryKey(tenantID, chatID))
	return nil
}

func (m *inMemory) UpdateChat(ctx context.Context, title string, metadata map[string]any) error {
	tenantID, chatID, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.getOrCreate(tenantID, chatID)
	if title != "" {
		c.info.Title = title
	}
	for k, v := range metadata {
		c.info.Metadata[k] = v
	}
	c.info.UpdatedAt = time.Now()
	return nil
}

func (m *inMemory) ListChats(ctx context.Context) ([]string, error) {
	tenantID, _, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	for _, c := range m.chats {
		if c.info.TenantID == tenantID {
			list = append(list, c.info.ChatID)
		}
	}
	slices.Sort(list)
	return list, nil
}

func (m *inMemory) GetChatInfo(ctx context.Context, id string) (*ChatInfo, error) {
	tenantID, chatID, err := chatmodel.GetTenantAndChatID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = chatID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.getOrCreate(tenantID, id)
	info := c.info
	info.Metadata = make(map[string]any, len(c.info.Metadata))
	for k, v := range c.info.Metadata {
		info.Metadata[k] = v
	}
	info.Messages = slices.Clone(c.messages)
	return &info, nil
}

// getOrCreate must be called with the lock held
func (m *inMemory) getOrCreate(tenantID, chatID string) *memoryChat {
	key := memoryKey(tenantID, chatID)
	c, ok := m.chats[key]
	if !ok {
		now := time.Now()
		c = &memoryChat{
			info: ChatInfo{
				TenantID:  tenantID,
				ChatID:    chatID,
				Title:     DefaultChatTitle,
				CreatedAt: now,
				UpdatedAt: now,
				Metadata:  make(map[string]any),
			},
		}
		m.chats[key] = c
	}
	return c
}
