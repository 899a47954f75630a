package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryUIUX      = "UI/UX Design"
	CategoryAppDesign = "App Design"
	CategoryWebDev    = "Web Development"
	CategoryMobileDev = "Mobile Development"
	CategoryGraphics  = "Graphics Design"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

var (
	Categories = []string{CategoryUIUX, CategoryAppDesign, CategoryWebDev, CategoryMobileDev, CategoryGraphics}
	Statuses   = []string{StatusPending, StatusInProgress, StatusCompleted, StatusOverdue}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Criterion struct {
	Criteria  string `bson:"criteria" json:"criteria"`
	Completed bool   `bson:"completed" json:"completed"`
}

type File struct {
	Filename     string             `bson:"filename" json:"filename"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	UploadedBy   primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	UploadDate   time.Time          `bson:"uploadDate" json:"uploadDate"`
}

// Submission is an append-only record of delivered work.
type Submission struct {
	SubmittedBy    primitive.ObjectID `bson:"submittedBy" json:"submittedBy"`
	SubmissionDate time.Time          `bson:"submissionDate" json:"submissionDate"`
	Files          []string           `bson:"files" json:"files"`
	Notes          string             `bson:"notes" json:"notes"`
}

type Task struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title              string               `bson:"title" json:"title" validate:"required,notblank"`
	Description        string               `bson:"description" json:"description" validate:"required,notblank"`
	Category           string               `bson:"category" json:"category" validate:"required,category"`
	AssignedTo         []primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	CreatedBy          primitive.ObjectID   `bson:"createdBy" json:"createdBy" validate:"required"`
	Progress           int                  `bson:"progress" json:"progress" validate:"min=0,max=100"`
	Status             string               `bson:"status" json:"status" validate:"status"`
	Priority           string               `bson:"priority" json:"priority" validate:"priority"`
	DueDate            time.Time            `bson:"dueDate" json:"dueDate" validate:"required"`
	TimeLimit          float64              `bson:"timeLimit" json:"timeLimit" validate:"gt=0"`
	AssessmentCriteria []Criterion          `bson:"assessmentCriteria" json:"assessmentCriteria"`
	Files              []File               `bson:"files" json:"files"`
	Submissions        []Submission         `bson:"submissions" json:"submissions"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ApplyDefaults fills the fields a new task may omit and makes the slice
// fields non-nil so they are stored as empty arrays.
func (t *Task) ApplyDefaults(now time.Time) {
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []primitive.ObjectID{}
	}
	if t.AssessmentCriteria == nil {
		t.AssessmentCriteria = []Criterion{}
	}
	if t.Files == nil {
		t.Files = []File{}
	}
	for i := range t.Files {
		if t.Files[i].UploadDate.IsZero() {
			t.Files[i].UploadDate = now
		}
	}
	if t.Submissions == nil {
		t.Submissions = []Submission{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Validate checks the task against the schema constraints of the tasks
// collection.
func (t *Task) Validate() error {
	return ValidateStruct(t)
}

// ValidateProgress enforces the [0,100] bound on task progress.
func ValidateProgress(p int) error {
	if err := validate.Var(p, "min=0,max=100"); err != nil {
		v := &ValidationError{}
		v.Add("progress", fmt.Sprintf("must be between %d and %d", MinProgress, MaxProgress))
		return v
	}
	return nil
}
