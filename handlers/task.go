package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/middleware"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

const taskResource = "Task"

var errUpload = errors.New("store submission files")

// TaskView is a task with its user references expanded. References that no
// longer resolve are dropped from assignedTo and rendered as null elsewhere.
type TaskView struct {
	ID                 primitive.ObjectID   `json:"id"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Category           string               `json:"category"`
	AssignedTo         []models.UserSummary `json:"assignedTo"`
	CreatedBy          *models.UserSummary  `json:"createdBy"`
	Progress           int                  `json:"progress"`
	Status             string               `json:"status"`
	Priority           string               `json:"priority"`
	DueDate            time.Time            `json:"dueDate"`
	TimeLimit          float64              `json:"timeLimit"`
	AssessmentCriteria []models.Criterion   `json:"assessmentCriteria"`
	Files              []models.File        `json:"files"`
	Submissions        []SubmissionView     `json:"submissions"`
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

type SubmissionView struct {
	SubmittedBy    *models.UserSummary `json:"submittedBy"`
	SubmissionDate time.Time           `json:"submissionDate"`
	Files          []string            `json:"files"`
	Notes          string              `json:"notes"`
}

// populate expands assignees (name, email, avatar), creators and submitters
// (name, email) with a single user lookup.
func (h *Handler) populate(ctx context.Context, tasks []models.Task) ([]TaskView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, t := range tasks {
		add(t.CreatedBy)
		for _, id := range t.AssignedTo {
			add(id)
		}
		for _, s := range t.Submissions {
			add(s.SubmittedBy)
		}
	}

	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load task users: %w", err)
	}
	summary := func(id primitive.ObjectID, withAvatar bool) *models.UserSummary {
		u, ok := users[id]
		if !ok {
			return nil
		}
		s := u.Summary(withAvatar)
		return &s
	}

	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		v := TaskView{
			ID:                 t.ID,
			Title:              t.Title,
			Description:        t.Description,
			Category:           t.Category,
			AssignedTo:         []models.UserSummary{},
			CreatedBy:          summary(t.CreatedBy, false),
			Progress:           t.Progress,
			Status:             t.Status,
			Priority:           t.Priority,
			DueDate:            t.DueDate,
			TimeLimit:          t.TimeLimit,
			AssessmentCriteria: nonNil(t.AssessmentCriteria),
			Files:              nonNil(t.Files),
			Submissions:        make([]SubmissionView, 0, len(t.Submissions)),
			CreatedAt:          t.CreatedAt,
			UpdatedAt:          t.UpdatedAt,
		}
		for _, id := range t.AssignedTo {
			if s := summary(id, true); s != nil {
				v.AssignedTo = append(v.AssignedTo, *s)
			}
		}
		for _, s := range t.Submissions {
			v.Submissions = append(v.Submissions, SubmissionView{
				SubmittedBy:    summary(s.SubmittedBy, false),
				SubmissionDate: s.SubmissionDate,
				Files:          nonNil(s.Files),
				Notes:          s.Notes,
			})
		}
		views[i] = v
	}
	return views, nil
}

func (h *Handler) respondTask(w http.ResponseWriter, r *http.Request, status int, t *models.Task) {
	views, err := h.populate(r.Context(), []models.Task{*t})
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	utils.ResponseWithJson(w, status, views[0])
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// taskID parses the {id} path segment. A malformed id cannot name a task, so
// it is reported as not found.
func taskID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return id, nil
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.List(r.Context())
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	views, err := h.populate(r.Context(), tasks)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, views)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	t, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	h.respondTask(w, r, http.StatusOK, t)
}

type fileRequest struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	UploadDate   time.Time `json:"uploadDate"`
}

// createTaskRequest has no createdBy field: the creator is always the
// authenticated user.
type createTaskRequest struct {
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	AssignedTo         []string           `json:"assignedTo"`
	Progress           number             `json:"progress"`
	Status             string             `json:"status"`
	Priority           string             `json:"priority"`
	DueDate            string             `json:"dueDate"`
	TimeLimit          number             `json:"timeLimit"`
	AssessmentCriteria []models.Criterion `json:"assessmentCriteria"`
	Files              []fileRequest      `json:"files"`
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (req createTaskRequest) toTask(creator primitive.ObjectID) (*models.Task, error) {
	v := &models.ValidationError{}
	t := &models.Task{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Category:           req.Category,
		CreatedBy:          creator,
		Progress:           intField(v, "progress", req.Progress, false),
		Status:             req.Status,
		Priority:           req.Priority,
		TimeLimit:          req.TimeLimit.value,
		AssessmentCriteria: req.AssessmentCriteria,
	}
	if req.TimeLimit.set && !req.TimeLimit.ok {
		v.Add("timeLimit", "must be a number")
	}
	for _, raw := range req.AssignedTo {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			v.Add("assignedTo", fmt.Sprintf("%q is not a valid user id", raw))
			continue
		}
		t.AssignedTo = append(t.AssignedTo, id)
	}
	if req.DueDate != "" {
		due, ok := parseDueDate(req.DueDate)
		if !ok {
			v.Add("dueDate", "must be a date")
		}
		t.DueDate = due
	}
	for _, f := range req.Files {
		t.Files = append(t.Files, models.File{
			Filename:     f.Filename,
			OriginalName: f.OriginalName,
			UploadedBy:   creator,
			UploadDate:   f.UploadDate,
		})
	}
	return t, v.OrNil()
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	t, err := req.toTask(user.ID)
	if err == nil {
		t.ApplyDefaults(h.now())
		err = t.Validate()
	}
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	if err := h.Tasks.Create(r.Context(), t); err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	h.respondTask(w, r, http.StatusCreated, t)
}

type progressRequest struct {
	Progress number `json:"progress"`
}

// UpdateProgress overwrites progress. Status is left as it is.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	v := &models.ValidationError{}
	progress := intField(v, "progress", req.Progress, true)
	if err := v.OrNil(); err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	if err := models.ValidateProgress(progress); err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	t, err := h.Tasks.SetProgress(r.Context(), id, progress)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	h.respondTask(w, r, http.StatusOK, t)
}

// SubmitTask stores the uploaded files, then appends one submission naming
// them. Files stay on disk if the append fails.
func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	if _, err := h.Tasks.Get(r.Context(), id); err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	notes, files, err := h.readSubmission(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.Is(err, errUpload) {
			h.fail(w, r, err, taskResource)
			return
		}
		if errors.As(err, &tooLarge) {
			utils.ResponseWithError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	sub := models.Submission{
		SubmittedBy:    user.ID,
		SubmissionDate: h.now(),
		Files:          files,
		Notes:          notes,
	}
	t, err := h.Tasks.AppendSubmission(r.Context(), id, sub)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	h.respondTask(w, r, http.StatusOK, t)
}

// readSubmission accepts a multipart form with repeated "files" parts and a
// "notes" field. JSON and urlencoded bodies may carry notes only.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (string, []string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
			return "", nil, err
		}
		defer r.MultipartForm.RemoveAll()

		stored, err := h.Uploads.SaveAll(r.MultipartForm.File["files"])
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", errUpload, err)
		}
		names := make([]string, len(stored))
		for i, s := range stored {
			names[i] = s.Filename
		}
		return r.FormValue("notes"), names, nil
	case "application/json":
		var body struct {
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", nil, err
		}
		return body.Notes, []string{}, nil
	default:
		if err := r.ParseForm(); err != nil {
			return "", nil, err
		}
		return r.PostFormValue("notes"), []string{}, nil
	}
}

type assessmentRequest struct {
	CriteriaIndex number `json:"criteriaIndex"`
	Completed     *bool  `json:"completed"`
}

// UpdateAssessment sets the completed flag of one criterion. An index
// outside the criteria list returns the task unchanged.
func (h *Handler) UpdateAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	v := &models.ValidationError{}
	index := intField(v, "criteriaIndex", req.CriteriaIndex, true)
	if req.Completed == nil {
		v.Add("completed", "is required")
	}
	if err := v.OrNil(); err != nil {
		h.fail(w, r, err, taskResource)
		return
	}

	t, err := h.Tasks.SetCriterion(r.Context(), id, index, *req.Completed)
	if err != nil {
		h.fail(w, r, err, taskResource)
		return
	}
	h.respondTask(w, r, http.StatusOK, t)
}
