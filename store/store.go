// Package store persists users and tasks. Every mutation is a single
// per-document update so concurrent writers to one task never interleave.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// TaskStore is the document-store view of the tasks collection.
type TaskStore interface {
	// List returns every task, newest first.
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// Create assigns the task an ID and inserts it. The caller applies
	// defaults beforehand.
	Create(ctx context.Context, t *models.Task) error
	SetProgress(ctx context.Context, id primitive.ObjectID, progress int) (*models.Task, error)
	AppendSubmission(ctx context.Context, id primitive.ObjectID, sub models.Submission) (*models.Task, error)
	// SetCriterion flips the completed flag of assessmentCriteria[index].
	// An index outside the criteria list leaves the task untouched and is
	// not an error.
	SetCriterion(ctx context.Context, id primitive.ObjectID, index int, completed bool) (*models.Task, error)
}

// UserStore is the document-store view of the users collection. Methods
// other than GetByEmail never return the password hash.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	// GetByEmail returns the full record including the password hash, for
	// credential checks.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.Profile) (*models.User, error)
}
