package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
)

// Memory is an in-process document store used for local development and
// tests. A single mutex makes every operation atomic per document, matching
// what MongoDB guarantees.
type Memory struct {
	mu    sync.RWMutex
	tasks map[primitive.ObjectID]*models.Task
	users map[primitive.ObjectID]*models.User
	seq   map[primitive.ObjectID]int
	next  int
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		tasks: make(map[primitive.ObjectID]*models.Task),
		users: make(map[primitive.ObjectID]*models.User),
		seq:   make(map[primitive.ObjectID]int),
		now:   time.Now,
	}
}

func (m *Memory) Tasks() *MemoryTasks { return &MemoryTasks{m} }
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m} }

type MemoryTasks struct{ m *Memory }

func (s *MemoryTasks) List(ctx context.Context) ([]models.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.Task, 0, len(s.m.tasks))
	for _, t := range s.m.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.m.seq[out[i].ID] > s.m.seq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryTasks) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneTask(t)
	return &c, nil
}

func (s *MemoryTasks) Create(ctx context.Context, t *models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	t.ID = primitive.NewObjectID()
	c := cloneTask(t)
	s.m.tasks[t.ID] = &c
	s.m.next++
	s.m.seq[t.ID] = s.m.next
	return nil
}

// mutate runs fn on the stored task under the write lock and returns a copy
// of the result.
func (s *MemoryTasks) mutate(id primitive.ObjectID, fn func(t *models.Task) error) (*models.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	t, ok := s.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	c := cloneTask(t)
	return &c, nil
}

func (s *MemoryTasks) SetProgress(ctx context.Context, id primitive.ObjectID, progress int) (*models.Task, error) {
	if err := models.ValidateProgress(progress); err != nil {
		return nil, err
	}
	return s.mutate(id, func(t *models.Task) error {
		t.Progress = progress
		t.UpdatedAt = s.m.now()
		return nil
	})
}

func (s *MemoryTasks) AppendSubmission(ctx context.Context, id primitive.ObjectID, sub models.Submission) (*models.Task, error) {
	sub.Files = append([]string{}, sub.Files...)
	return s.mutate(id, func(t *models.Task) error {
		t.Submissions = append(t.Submissions, sub)
		t.UpdatedAt = s.m.now()
		return nil
	})
}

func (s *MemoryTasks) SetCriterion(ctx context.Context, id primitive.ObjectID, index int, completed bool) (*models.Task, error) {
	return s.mutate(id, func(t *models.Task) error {
		if index < 0 || index >= len(t.AssessmentCriteria) {
			return nil
		}
		t.AssessmentCriteria[index].Completed = completed
		t.UpdatedAt = s.m.now()
		return nil
	})
}

type MemoryUsers struct{ m *Memory }

func (s *MemoryUsers) List(ctx context.Context) ([]models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.User, 0, len(s.m.users))
	for _, u := range s.m.users {
		out = append(out, publicUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return s.m.seq[out[i].ID] < s.m.seq[out[j].ID] })
	return out, nil
}

func (s *MemoryUsers) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := publicUser(u)
	return &c, nil
}

func (s *MemoryUsers) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.m.users[id]; ok {
			out[id] = publicUser(u)
		}
	}
	return out, nil
}

func (s *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	for _, u := range s.m.users {
		if u.Email == email {
			c := *u
			c.Skills = append([]string{}, u.Skills...)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	email := normalizeEmail(u.Email)
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, existing := range s.m.users {
		if existing.Email == email {
			return ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.Email = email
	if u.Skills == nil {
		u.Skills = []string{}
	}
	c := *u
	c.Skills = append([]string{}, u.Skills...)
	s.m.users[u.ID] = &c
	s.m.next++
	s.m.seq[u.ID] = s.m.next
	return nil
}

func (s *MemoryUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.Profile) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(u)
	if p.Skills != nil {
		u.Skills = append([]string{}, *p.Skills...)
	}
	u.UpdatedAt = s.m.now()
	c := publicUser(u)
	return &c, nil
}

func publicUser(u *models.User) models.User {
	c := *u
	c.Password = ""
	c.Skills = append([]string{}, u.Skills...)
	return c
}

func cloneTask(t *models.Task) models.Task {
	c := *t
	c.AssignedTo = append([]primitive.ObjectID{}, t.AssignedTo...)
	c.AssessmentCriteria = append([]models.Criterion{}, t.AssessmentCriteria...)
	c.Files = append([]models.File{}, t.Files...)
	c.Submissions = make([]models.Submission, len(t.Submissions))
	for i, sub := range t.Submissions {
		sub.Files = append([]string{}, sub.Files...)
		c.Submissions[i] = sub
	}
	return c
}

var (
	_ TaskStore = (*MemoryTasks)(nil)
	_ UserStore = (*MemoryUsers)(nil)
)
