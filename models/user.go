package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a dashboard account. Password holds the bcrypt hash and is never
// serialised to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Skills    []string           `bson:"skills" json:"skills"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the reduced view of a user embedded in task responses.
type UserSummary struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Avatar string             `json:"avatar,omitempty"`
}

// Summary returns the user's id, name and email; the avatar is included only
// when withAvatar is set.
func (u User) Summary(withAvatar bool) UserSummary {
	s := UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	if withAvatar {
		s.Avatar = u.Avatar
	}
	return s
}

// Profile is the set of fields a user may change on their own account.
// Nil fields are left untouched.
type Profile struct {
	Name   *string   `json:"name" validate:"omitempty,notblank"`
	Skills *[]string `json:"skills"`
	Avatar *string   `json:"avatar"`
}

func (p Profile) Validate() error {
	return ValidateStruct(p)
}

// Apply copies the provided fields onto u.
func (p Profile) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Skills != nil {
		u.Skills = *p.Skills
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
