package user

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

var sameSQL = sqlmock.QueryMatcherFunc(func(expected, actual string) error {
	if strings.Join(strings.Fields(expected), " ") != strings.Join(strings.Fields(actual), " ") {
		return fmt.Errorf("query %q does not match %q", actual, expected)
	}
	return nil
})

var userCols = []string{"username", "password", "first_name", "last_name", "email", "photo_url", "is_admin"}

const (
	takenQuery  = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1 OR email=$2)`
	insertQuery = `INSERT INTO users (username, password, first_name, last_name, email, photo_url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING *`
	selectQuery = `SELECT username, password, first_name, last_name, email, photo_url, is_admin FROM users WHERE username=$1`
)

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

func newTestService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sameSQL))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserService(sqlx.NewDb(db, "sqlmock"), nil, testHasher), mock
}

func mustHash(t *testing.T, cost int, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func strPtr(s string) *string { return &s }

// hashOf matches a bcrypt hash of a known plain text.
type hashOf string

func (h hashOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && bcrypt.CompareHashAndPassword([]byte(s), []byte(h)) == nil
}

func TestBcryptHasher(t *testing.T) {
	h, err := testHasher.Hash("worstpassword")
	if err != nil {
		t.Fatal(err)
	}
	if h == "worstpassword" || !testHasher.Verify(h, "worstpassword") || testHasher.Verify(h, "nope") {
		t.Error("hash does not round trip")
	}
	if testHasher.NeedsRehash(h) {
		t.Error("fresh hash needs rehash")
	}
	if !testHasher.NeedsRehash(mustHash(t, bcrypt.MinCost+1, "x")) {
		t.Error("hash with other cost does not need rehash")
	}
	if !testHasher.NeedsRehash("plain") {
		t.Error("non-bcrypt value does not need rehash")
	}
}

func TestCreate(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(takenQuery).WithArgs("newUser", "andrew@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(insertQuery).
		WithArgs("newUser", hashOf("worstpassword"), "Andrew", "Li", "andrew@gmail.com", "andrew.jpg").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("newUser", "$2a$04$hash", "Andrew", "Li", "andrew@gmail.com", "andrew.jpg", false))

	in := &entity.User{Username: "newUser", Password: "worstpassword", FirstName: "Andrew", LastName: "Li", Email: "andrew@gmail.com", PhotoURL: strPtr("andrew.jpg")}
	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := &entity.Profile{Username: "newUser", FirstName: "Andrew", LastName: "Li", Email: "andrew@gmail.com", PhotoURL: strPtr("andrew.jpg")}
	if !reflect.DeepEqual(got.Profile(), want) {
		t.Errorf("got %+v", got.Profile())
	}
	if in.Password != "worstpassword" {
		t.Error("Create modified the caller's user")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateTaken(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(takenQuery).WithArgs("testy", "andrew@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(context.Background(), &entity.User{Username: "testy", Password: "x", Email: "andrew@gmail.com"})
	if ae, ok := apperror.As(err); !ok || ae.Type != apperror.AlreadyExistsError || ae.Message != "Username or email taken." {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetAndList(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`SELECT username, first_name, last_name, email FROM users ORDER BY username`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "first_name", "last_name", "email"}).
			AddRow("testy", "test", "user", "mctest@gmail.com").
			AddRow("user2", "User", "2", "user2@gmail.com"))
	mock.ExpectQuery(selectQuery).WithArgs("testy").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("testy", "hash", "test", "user", "mctest@gmail.com", "testuser.jpg", false))
	mock.ExpectQuery(selectQuery).WithArgs("faker").WillReturnRows(sqlmock.NewRows(userCols))

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 2 || list[1].Username != "user2" {
		t.Fatalf("List: %v %v", list, err)
	}
	p, err := svc.Get(context.Background(), "testy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Email != "mctest@gmail.com" || *p.PhotoURL != "testuser.jpg" {
		t.Errorf("got %+v", p)
	}
	_, err = svc.Get(context.Background(), "faker")
	if ae, ok := apperror.As(err); !ok || ae.Type != apperror.NotFoundError || ae.Message != "User not found." {
		t.Errorf("missing: err = %v", err)
	}
}

func TestUpdateHashesPassword(t *testing.T) {
	const upd = `UPDATE users SET password=$1, email=$2 WHERE username=$3 RETURNING *`
	svc, mock := newTestService(t)
	mock.ExpectQuery(upd).WithArgs(hashOf("secret"), "admin@gmail.com", "user2").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user2", "hash", "User", "2", "admin@gmail.com", "user.jpg", false))

	p, err := svc.Update(context.Background(), "user2", entity.Patch{Password: strPtr("secret"), Email: strPtr("admin@gmail.com")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Email != "admin@gmail.com" {
		t.Errorf("got %+v", p)
	}
	if _, err := svc.Update(context.Background(), "user2", entity.Patch{}); !apperror.IsValidation(err) {
		t.Errorf("empty patch: err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDelete(t *testing.T) {
	const del = `DELETE FROM users WHERE username=$1`
	svc, mock := newTestService(t)
	mock.ExpectExec(del).WithArgs("user2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(del).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Delete(context.Background(), "user2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "ghost"); !apperror.IsNotFound(err) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	hash := mustHash(t, bcrypt.MinCost, "password")
	cases := []struct {
		name     string
		rows     *sqlmock.Rows
		password string
		ok       bool
	}{
		{"valid", sqlmock.NewRows(userCols).AddRow("testy", hash, "test", "user", "t@x.com", nil, false), "password", true},
		{"wrong password", sqlmock.NewRows(userCols).AddRow("testy", hash, "test", "user", "t@x.com", nil, false), "guess", false},
		{"unknown user", sqlmock.NewRows(userCols), "password", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := newTestService(t)
			mock.ExpectQuery(selectQuery).WithArgs("testy").WillReturnRows(tc.rows)

			u, err := svc.Authenticate(context.Background(), "testy", tc.password)
			if tc.ok {
				if err != nil || u.Username != "testy" {
					t.Fatalf("got %v, %v", u, err)
				}
				return
			}
			if ae, ok := apperror.As(err); !ok || ae.Type != apperror.AuthError || ae.Message != "Invalid username/password" {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestAuthenticateRehashesOutdatedHash(t *testing.T) {
	svc, mock := newTestService(t)
	old := mustHash(t, bcrypt.MinCost+1, "password")
	mock.ExpectQuery(selectQuery).WithArgs("testy").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("testy", old, "test", "user", "t@x.com", nil, false))
	mock.ExpectQuery(`UPDATE users SET password=$1 WHERE username=$2 RETURNING *`).
		WithArgs(hashOf("password"), "testy").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("testy", "new", "test", "user", "t@x.com", nil, false))

	if _, err := svc.Authenticate(context.Background(), "testy", "password"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPasswordByteLimit(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(takenQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(insertQuery).
		WithArgs("u", hashOf(strings.Repeat("a", 72)), "F", "L", "u@x.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u", "$2a$04$hash", "F", "L", "u@x.com", nil, false))

	if _, err := svc.Create(context.Background(), &entity.User{Username: "u", Password: strings.Repeat("a", 72), FirstName: "F", LastName: "L", Email: "u@x.com"}); err != nil {
		t.Fatalf("72 bytes: %v", err)
	}
	long := strings.Repeat("é", 37)
	_, err := svc.Create(context.Background(), &entity.User{Username: "u", Password: long})
	if ae, ok := apperror.As(err); !ok || ae.Type != apperror.ValidationError {
		t.Errorf("create 74 bytes: %v", err)
	}
	_, err = svc.Update(context.Background(), "u", entity.Patch{Password: &long})
	if ae, ok := apperror.As(err); !ok || ae.Type != apperror.ValidationError {
		t.Errorf("update 74 bytes: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateClearsPhoto(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(`UPDATE users SET photo_url=$1 WHERE username=$2 RETURNING *`).
		WithArgs(nil, "user2").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("user2", "hash", "User", "2", "user2@gmail.com", nil, false))

	p, err := svc.Update(context.Background(), "user2", entity.Patch{PhotoURL: sqlbuilder.Null[string]()})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.PhotoURL != nil {
		t.Errorf("photo_url = %q", *p.PhotoURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
