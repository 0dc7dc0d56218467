package store

import (
	"context"
	"sort"
	"sync"

	"edutechai/internal/util"
	"edutechai/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and by
// memory:// database URLs.
type MemoryStore struct {
	mu        sync.RWMutex
	textbooks map[string]domain.Textbook
	order     []string
	convs     []domain.Conversation
	users     map[string]domain.User // key: user ID
	email     map[string]string      // email -> user ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		textbooks: make(map[string]domain.Textbook),
		users:     make(map[string]domain.User),
		email:     make(map[string]string),
	}
}

func (m *MemoryStore) CreateTextbook(_ context.Context, tb domain.Textbook) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tb.ID = util.NewID()
	m.textbooks[tb.ID] = tb
	m.order = append(m.order, tb.ID)
	return tb.ID, nil
}

func (m *MemoryStore) LinkTextbookFile(_ context.Context, id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tb, ok := m.textbooks[id]
	if !ok {
		return ErrNotFound
	}
	tb.PDFPath = path
	tb.IngestState = domain.IngestPathLinked
	m.textbooks[id] = tb
	return nil
}

func (m *MemoryStore) GetTextbook(_ context.Context, id string) (domain.Textbook, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tb, ok := m.textbooks[id]
	return tb, ok, nil
}

// ListTextbooks returns textbooks in insertion order without content.
func (m *MemoryStore) ListTextbooks(_ context.Context, ownerID string) ([]domain.Textbook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Textbook, 0, len(m.order))
	for _, id := range m.order {
		tb, ok := m.textbooks[id]
		if !ok {
			continue
		}
		if ownerID != "" && (tb.UserID == nil || *tb.UserID != ownerID) {
			continue
		}
		tb.Content = ""
		res = append(res, tb)
	}
	return res, nil
}

func (m *MemoryStore) DeleteTextbook(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.textbooks[id]; !ok {
		return false, nil
	}
	delete(m.textbooks, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) CreateConversation(_ context.Context, c domain.Conversation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = util.NewID()
	m.convs = append(m.convs, c)
	return c.ID, nil
}

// ListConversations returns newest first; equal timestamps keep the later
// insert first.
func (m *MemoryStore) ListConversations(_ context.Context, textbookID, userID string, limit int) ([]domain.Conversation, error) {
	m.mu.RLock()
	var res []domain.Conversation
	for i := len(m.convs) - 1; i >= 0; i-- {
		c := m.convs[i]
		if c.TextbookID != textbookID {
			continue
		}
		if userID != "" && (c.UserID == nil || *c.UserID != userID) {
			continue
		}
		res = append(res, c)
	}
	m.mu.RUnlock()

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(res) > limit {
		res = res[:limit]
	}
	if res == nil {
		res = []domain.Conversation{}
	}
	return res, nil
}

func (m *MemoryStore) DeleteConversationsByTextbook(_ context.Context, textbookID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.convs[:0]
	var n int64
	for _, c := range m.convs {
		if c.TextbookID == textbookID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.convs = kept
	return n, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, u domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.email[u.Email]; exists {
		return "", ErrDuplicate
	}
	u.ID = util.NewID()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return u.ID, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }
