package entity

import "github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"

// User represents an account row in the `users` table. Password holds the
// bcrypt hash and never leaves the service.
type User struct {
	Username  string  `db:"username" json:"username"`
	Password  string  `db:"password" json:"-"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     string  `db:"email" json:"email"`
	PhotoURL  *string `db:"photo_url" json:"photo_url"`
	IsAdmin   bool    `db:"is_admin" json:"is_admin"`
}

// Profile is the public single-user view.
type Profile struct {
	Username  string  `db:"username" json:"username"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     string  `db:"email" json:"email"`
	PhotoURL  *string `db:"photo_url" json:"photo_url"`
}

// Summary is the list projection.
type Summary struct {
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
	}
}

// Patch lists the writable columns. Password is the plain text and is
// hashed by the service before it reaches Fields.
type Patch struct {
	Password  *string
	FirstName *string
	LastName  *string
	Email     *string
	PhotoURL  sqlbuilder.Nullable[string]
}

func (p Patch) Fields() []sqlbuilder.Field {
	var f []sqlbuilder.Field
	if p.Password != nil {
		f = append(f, sqlbuilder.Field{Column: "password", Value: *p.Password})
	}
	if p.FirstName != nil {
		f = append(f, sqlbuilder.Field{Column: "first_name", Value: *p.FirstName})
	}
	if p.LastName != nil {
		f = append(f, sqlbuilder.Field{Column: "last_name", Value: *p.LastName})
	}
	if p.Email != nil {
		f = append(f, sqlbuilder.Field{Column: "email", Value: *p.Email})
	}
	return p.PhotoURL.Field(f, "photo_url")
}
