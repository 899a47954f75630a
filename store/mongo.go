package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"

	codeNamespaceExists   = 48
	codeValidationFailure = 121
)

var withoutPassword = bson.M{"password": 0}

// Mongo holds the collections of one database. It is created once at startup
// and shared by every handler.
type Mongo struct {
	db      *mongo.Database
	timeout time.Duration
	now     func() time.Time
}

func NewMongo(db *mongo.Database, timeout time.Duration) *Mongo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Mongo{db: db, timeout: timeout, now: time.Now}
}

func (m *Mongo) Tasks() *MongoTasks { return &MongoTasks{m: m, coll: m.db.Collection(TasksCollection)} }
func (m *Mongo) Users() *MongoUsers { return &MongoUsers{m: m, coll: m.db.Collection(UsersCollection)} }

func (m *Mongo) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, m.timeout)
}

// EnsureSchema installs the collection validators and the unique email index.
// Existing collections get their validator replaced.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	for name, validator := range map[string]bson.M{
		TasksCollection: taskValidator(),
		UsersCollection: userValidator(),
	} {
		err := m.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
		if hasCode(err, codeNamespaceExists) {
			err = m.db.RunCommand(ctx, bson.D{{Key: "collMod", Value: name}, {Key: "validator", Value: validator}}).Err()
		}
		if err != nil {
			return fmt.Errorf("ensure %s schema: %w", name, err)
		}
	}

	_, err := m.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure users email index: %w", err)
	}
	return nil
}

func taskValidator() bson.M {
	number := bson.A{"int", "long", "double", "decimal"}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"title", "description", "category", "createdBy", "dueDate", "timeLimit"},
		"properties": bson.M{
			"title":       bson.M{"bsonType": "string", "minLength": 1},
			"description": bson.M{"bsonType": "string", "minLength": 1},
			"category":    bson.M{"enum": toArray(models.Categories)},
			"assignedTo":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			"createdBy":   bson.M{"bsonType": "objectId"},
			"progress":    bson.M{"bsonType": number, "minimum": models.MinProgress, "maximum": models.MaxProgress},
			"status":      bson.M{"enum": toArray(models.Statuses)},
			"priority":    bson.M{"enum": toArray(models.Priorities)},
			"dueDate":     bson.M{"bsonType": "date"},
			"timeLimit":   bson.M{"bsonType": number, "minimum": 0, "exclusiveMinimum": true},
			"submissions": bson.M{"bsonType": "array"},
		},
	}}
}

func userValidator() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "email", "password"},
		"properties": bson.M{
			"name":   bson.M{"bsonType": "string", "minLength": 1},
			"email":  bson.M{"bsonType": "string", "minLength": 1},
			"skills": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
		},
	}}
}

func toArray(vals []string) bson.A {
	a := make(bson.A, len(vals))
	for i, v := range vals {
		a[i] = v
	}
	return a
}

func hasCode(err error, code int) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(code)
}

// translate maps driver errors onto the store's error vocabulary.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	case hasCode(err, codeValidationFailure):
		v := &models.ValidationError{}
		v.Add("document", "failed schema validation")
		return v
	}
	return err
}

type MongoTasks struct {
	m    *Mongo
	coll *mongo.Collection
}

func (s *MongoTasks) List(ctx context.Context) ([]models.Task, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *MongoTasks) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	var t models.Task
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *MongoTasks) Create(ctx context.Context, t *models.Task) error {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	t.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		t.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

// update applies one atomic update and returns the document after it.
func (s *MongoTasks) update(ctx context.Context, filter bson.M, update bson.M) (*models.Task, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *MongoTasks) SetProgress(ctx context.Context, id primitive.ObjectID, progress int) (*models.Task, error) {
	return s.update(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"progress": progress, "updatedAt": s.m.now()},
	})
}

func (s *MongoTasks) AppendSubmission(ctx context.Context, id primitive.ObjectID, sub models.Submission) (*models.Task, error) {
	if sub.Files == nil {
		sub.Files = []string{}
	}
	return s.update(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"submissions": sub},
		"$set":  bson.M{"updatedAt": s.m.now()},
	})
}

func (s *MongoTasks) SetCriterion(ctx context.Context, id primitive.ObjectID, index int, completed bool) (*models.Task, error) {
	if index < 0 {
		return s.Get(ctx, id)
	}
	path := "assessmentCriteria." + strconv.Itoa(index)
	t, err := s.update(ctx,
		bson.M{"_id": id, path: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{path + ".completed": completed, "updatedAt": s.m.now()}},
	)
	if errors.Is(err, ErrNotFound) {
		// Either the task is missing or the index is out of range.
		return s.Get(ctx, id)
	}
	return t, err
}

type MongoUsers struct {
	m    *Mongo
	coll *mongo.Collection
}

func (s *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUsers) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword)).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *MongoUsers) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out[u.ID] = u
	}
	return out, cursor.Err()
}

func (s *MongoUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *MongoUsers) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	u.ID = primitive.NewObjectID()
	u.Email = normalizeEmail(u.Email)
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		u.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (s *MongoUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.Profile) (*models.User, error) {
	ctx, cancel := s.m.ctx(ctx)
	defer cancel()

	set := bson.M{"updatedAt": s.m.now()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Skills != nil {
		set["skills"] = *p.Skills
	}
	if p.Avatar != nil {
		set["avatar"] = *p.Avatar
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	var u models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	_ TaskStore = (*MongoTasks)(nil)
	_ UserStore = (*MongoUsers)(nil)
)
