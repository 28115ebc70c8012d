package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	userstore "github.com/dalemusser/congregate/internal/app/store/users"
	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/app/system/notify"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrFake is returned by fakes configured to fail.
var ErrFake = errors.New("fake store failure")

/* -------------------------------------------------------------------------- */
/* Users                                                                      */
/* -------------------------------------------------------------------------- */

// UserStore is an in-memory user store that mirrors userstore.Store errors.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	calls int

	// Fail makes every call return ErrFake.
	Fail bool
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[primitive.ObjectID]models.User{}}
}

// Calls reports how many store methods have been invoked.
func (s *UserStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// All returns a snapshot of the stored users, oldest first.
func (s *UserStore) All() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(models.User) bool { return true })
}

func (s *UserStore) enter() error {
	s.calls++
	if s.Fail {
		return ErrFake
	}
	return nil
}

func (s *UserStore) sorted(keep func(models.User) bool) []models.User {
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (s *UserStore) Create(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return models.User{}, err
	}
	email = normalize.Email(email)
	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u := models.User{ID: primitive.NewObjectID(), Email: email, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	email = normalize.Email(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *UserStore) Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	now := time.Now().UTC()
	u.Approved = true
	u.ApprovedAt = &now
	u.UpdatedAt = now
	if h, ok := fields["pin_hash"].(string); ok {
		u.PINHash = h
	}
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(s.users, id)
	return &u, nil
}

func (s *UserStore) ListByApproval(ctx context.Context, approved bool) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return nil, err
	}
	return s.sorted(func(u models.User) bool { return u.Approved == approved }), nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return 0, err
	}
	return int64(len(s.users)), nil
}

func (s *UserStore) CountOnline(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return 0, err
	}
	var n int64
	for _, u := range s.users {
		if u.Online {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Online = online
	s.users[id] = u
	return nil
}

/* -------------------------------------------------------------------------- */
/* Admins                                                                     */
/* -------------------------------------------------------------------------- */

// AdminStore is an in-memory admin credential store.
type AdminStore struct {
	mu     sync.Mutex
	admins map[string]models.AdminCredential
}

func NewAdminStore() *AdminStore {
	return &AdminStore{admins: map[string]models.AdminCredential{}}
}

// Put stores an admin with an already hashed PIN.
func (s *AdminStore) Put(email, pinHash string) models.AdminCredential {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.AdminCredential{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		PINHash:   pinHash,
		CreatedAt: time.Now().UTC(),
	}
	s.admins[a.Email] = a
	return a
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.AdminCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[normalize.Email(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &a, nil
}

/* -------------------------------------------------------------------------- */
/* Photos                                                                     */
/* -------------------------------------------------------------------------- */

// PhotoStore is an in-memory photo store.
type PhotoStore struct {
	mu     sync.Mutex
	photos map[primitive.ObjectID]models.Photo
}

func NewPhotoStore() *PhotoStore {
	return &PhotoStore{photos: map[primitive.ObjectID]models.Photo{}}
}

// Len returns the number of stored photos.
func (s *PhotoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

func (s *PhotoStore) Create(ctx context.Context, p models.Photo) (models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.Approved = false
	p.ApprovedAt = nil
	p.CreatedAt = time.Now().UTC()
	s.photos[p.ID] = p
	return p, nil
}

func (s *PhotoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (s *PhotoStore) Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	now := time.Now().UTC()
	p.Approved = true
	p.ApprovedAt = &now
	s.photos[id] = p
	return &p, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(s.photos, id)
	return &p, nil
}

func (s *PhotoStore) ListByApproval(ctx context.Context, approved bool) ([]models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Photo, 0)
	for _, p := range s.photos {
		if p.Approved == approved {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

/* -------------------------------------------------------------------------- */
/* Notifications and files                                                    */
/* -------------------------------------------------------------------------- */

// Notifier records every message it is given.
type Notifier struct {
	mu       sync.Mutex
	messages []notify.Message

	// Err, when set, is returned from Notify after recording.
	Err error
}

func (n *Notifier) Notify(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.Err
}

// Messages returns a copy of the recorded messages.
func (n *Notifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}

// Files is an in-memory file store.
type Files struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewFiles() *Files {
	return &Files{objects: map[string][]byte{}}
}

func (f *Files) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = buf.Bytes()
	return nil
}

func (f *Files) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	return nil
}

func (f *Files) URL(path string) string {
	return "/files/" + path
}

// Has reports whether path is stored.
func (f *Files) Has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

// Len returns the number of stored objects.
func (f *Files) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
