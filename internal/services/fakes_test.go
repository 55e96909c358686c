package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"campusevents/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// fakeEventRepo is an in-memory document store. It stores deep copies so callers only
// change stored state through Save, and it enforces the version check like the real repo.
type fakeEventRepo struct {
	mu        sync.Mutex
	docs      map[string][]byte
	versions  map[string]int64
	saveCalls int
	saveErr   error
	// beforeSave runs inside Save before the version check; tests use it to inject races.
	beforeSave func(id string)
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{docs: make(map[string][]byte), versions: make(map[string]int64)}
}

func (f *fakeEventRepo) put(e *domain.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}
	f.docs[e.ID] = b
}

func (f *fakeEventRepo) load(id string) *domain.Event {
	var e domain.Event
	if err := json.Unmarshal(f.docs[id], &e); err != nil {
		panic(err)
	}
	e.Version = f.versions[id]
	return &e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.Version = 1
	f.versions[e.ID] = 1
	f.put(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return f.load(id), nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for id := range f.docs {
		e := f.load(id)
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		if filter.OwnerID != "" && e.CreatedBy != filter.OwnerID {
			continue
		}
		if filter.After != nil && !e.Date.After(*filter.After) {
			continue
		}
		if filter.Before != nil && !e.Date.Before(*filter.Before) {
			continue
		}
		if filter.ParticipantID != "" && !e.IsRegistered(filter.ParticipantID) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" {
			hay := strings.ToLower(e.Title + " " + e.Description + " " + e.Location)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeEventRepo) Save(ctx context.Context, e *domain.Event) error {
	if f.beforeSave != nil {
		f.beforeSave(e.ID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	cur, ok := f.versions[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur != e.Version {
		return domain.ErrConflict
	}
	e.Version = cur + 1
	f.versions[e.ID] = e.Version
	f.put(e)
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	delete(f.versions, id)
	return nil
}

// bumpVersion simulates a writer that bypassed the locker.
func (f *fakeEventRepo) bumpVersion(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[id]++
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	getErr  error
	saveErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

// fakeFavoriteRepo keeps insertion order like the real table's created_at ordering.
type fakeFavoriteRepo struct {
	byUser map[string][]string
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{byUser: make(map[string][]string)}
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, userID, eventID string) error {
	for _, id := range f.byUser[userID] {
		if id == eventID {
			return nil
		}
	}
	f.byUser[userID] = append(f.byUser[userID], eventID)
	return nil
}

func (f *fakeFavoriteRepo) Remove(ctx context.Context, userID, eventID string) error {
	ids := f.byUser[userID]
	for i, id := range ids {
		if id == eventID {
			f.byUser[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeFavoriteRepo) ListEventIDs(ctx context.Context, userID string) ([]string, error) {
	return append([]string{}, f.byUser[userID]...), nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu            sync.Mutex
	welcomes      []*domain.WelcomeMessageEmailData
	confirmations []*domain.RegistrationEmailData
	err           error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, data)
	return f.err
}

func testUser(id string) *domain.User {
	return &domain.User{ID: id, Username: "user-" + id, Email: id + "@college.edu", Role: domain.RoleStudent}
}

func validForm() domain.RegistrationForm {
	return domain.RegistrationForm{
		"studentName":   "Asha Rao",
		"rollNo":        "CS-042",
		"class":         "B.Tech",
		"phone":         "9876543210",
		"department":    "Computer Science",
		"year":          "3",
		"termsAccepted": true,
	}
}
