package handler_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"postapi/domain"
)

type memPosts struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]domain.Post
	now    func() time.Time
}

func newMemPosts() *memPosts {
	return &memPosts{posts: map[int64]domain.Post{}, now: time.Now}
}

func (m *memPosts) List(_ context.Context, page, perPage int) (domain.PostPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := domain.PostPage{Posts: []domain.Post{}, Total: len(ids), Page: page, PerPage: perPage}
	if page > result.LastPage() {
		return result, nil
	}
	for i := (page - 1) * perPage; i < len(ids) && i < page*perPage; i++ {
		result.Posts = append(result.Posts, m.posts[ids[i]])
	}
	return result, nil
}

func (m *memPosts) Create(_ context.Context, title string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := m.now().UTC()
	p := domain.Post{ID: m.nextID, Title: title, CreatedAt: now, UpdatedAt: now}
	m.posts[p.ID] = p
	return p, nil
}

func (m *memPosts) Find(_ context.Context, id int64) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return p, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPosts) Update(_ context.Context, id int64, title string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return p, domain.ErrNotFound
	}
	p.Title = title
	p.UpdatedAt = m.now().UTC()
	m.posts[id] = p
	return p, nil
}

func (m *memPosts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type memUser struct {
	user domain.User
	hash []byte
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]memUser
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]memUser{}}
}

func (m *memUsers) Create(_ context.Context, username string, hash []byte) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return domain.User{}, domain.ErrConflict
	}
	now := time.Now().UTC()
	u := domain.User{ID: "user-" + username, Username: username, CreatedAt: now, UpdatedAt: now}
	m.users[username] = memUser{user: u, hash: hash}
	return u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (domain.User, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return domain.User{}, nil, domain.ErrNotFound
	}
	return u.user, u.hash, nil
}

type pinger struct {
	err error
}

func (p pinger) PingContext(context.Context) error {
	return p.err
}

var errDown = errors.New("database is down")
