package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/database"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/mail"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	errStorageDown = errors.New("storage is down")
	errMailDown    = errors.New("mail server is down")
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.DriverSqlite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), "sl_", false)
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))

	raw, err := db.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	return db
}

// memoryStore records uploads and deletions, failing on demand.
type memoryStore struct {
	mu         sync.Mutex
	uploaded   []string
	deleted    []string
	failUpload bool
	failDelete bool

	// failRef fails deletions of this one ref only
	failRef string
}

var _ storage.Uploader = (*memoryStore)(nil)

func (s *memoryStore) Upload(_ context.Context, localPath string) (storage.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload {
		return storage.Upload{}, errStorageDown
	}
	ref := uuid.NewString()
	s.uploaded = append(s.uploaded, ref)
	return storage.Upload{
		URL: "https://cdn.example.com/upload/" + ref + filepath.Ext(localPath),
		Ref: ref,
	}, nil
}

func (s *memoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete || (s.failRef != "" && s.failRef == ref) {
		return errStorageDown
	}
	s.deleted = append(s.deleted, ref)
	return nil
}

// memoryIndex holds the documents currently searchable, by index and id.
type memoryIndex struct {
	mu   sync.Mutex
	docs map[search.Index]map[uint]search.Document
}

var _ search.Indexer = (*memoryIndex)(nil)

func (m *memoryIndex) Put(_ context.Context, doc search.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = map[search.Index]map[uint]search.Document{}
	}
	if m.docs[doc.Index] == nil {
		m.docs[doc.Index] = map[uint]search.Document{}
	}
	m.docs[doc.Index][doc.ID] = doc
	return nil
}

func (m *memoryIndex) Remove(_ context.Context, index search.Index, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[index], id)
	return nil
}

func (m *memoryIndex) get(index search.Index, id uint) (search.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[index][id]
	return doc, ok
}

type sentMail struct {
	Template mail.Template
	Address  string
	Code     string
}

// memoryMailer keeps every code it was asked to send.
type memoryMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

var _ mail.Sender = (*memoryMailer)(nil)

func (m *memoryMailer) Send(_ context.Context, template mail.Template, address, _ string, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errMailDown
	}
	m.sent = append(m.sent, sentMail{Template: template, Address: address, Code: code})
	return nil
}

func (m *memoryMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedBlog(t *testing.T, db *gorm.DB, author uint, visibility string) models.Post {
	t.Helper()
	post := models.Post{
		Title:      "Notes",
		Content:    "A long enough body for a blog post that passes every length check we have.",
		Type:       models.PostTypeBlog,
		Visibility: visibility,
		AuthorID:   author,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func countRows[M any](t *testing.T, db *gorm.DB, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(new(M)).Where(query, args...).Count(&n).Error)
	return n
}
