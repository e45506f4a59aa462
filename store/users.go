package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// User maps to the users table. AuthToken and Password are hidden from JSON responses.
type User struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"`
	AuthToken string     `json:"-" db:"auth_token"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// ErrInvalidCredentials covers both an unknown username and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when a username isn't found, so a miss costs
// the same bcrypt time as a hit.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// Authenticate returns the user for username if password matches. Any other
// error is a failed lookup.
func Authenticate(ctx context.Context, db Querier, username, password string) (User, error) {
	u, lookupErr := QueryOne[User](ctx, db,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})

	hash := dummyHash
	if lookupErr == nil {
		hash = []byte(u.Password)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(password))

	switch {
	case errors.Is(lookupErr, pgx.ErrNoRows):
		return User{}, ErrInvalidCredentials
	case lookupErr != nil:
		return User{}, fmt.Errorf("look up user: %w", lookupErr)
	case compareErr != nil:
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

type userRef struct {
	ID int `db:"id"`
}

// UserIDByToken resolves a bearer token. An unknown token is pgx.ErrNoRows.
func UserIDByToken(ctx context.Context, db Querier, token string) (int, error) {
	r, err := QueryOne[userRef](ctx, db,
		"SELECT id FROM users WHERE auth_token = @token",
		pgx.NamedArgs{"token": token})
	return r.ID, err
}

// CreateUser inserts a user with a bcrypt-hashed password and a fresh auth
// token, then the user's default goal settings row. Pass a transaction so the
// two inserts land together.
func CreateUser(ctx context.Context, db Querier, username, email, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := QueryOne[User](ctx, db,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{
			"username": username, "email": email,
			"password": string(hash), "authToken": uuid.New().String(),
		})
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	if _, err := db.Exec(ctx,
		"INSERT INTO calorie_log_user_settings (user_id) VALUES (@userID)",
		pgx.NamedArgs{"userID": u.ID}); err != nil {
		return User{}, fmt.Errorf("insert goal settings: %w", err)
	}
	return u, nil
}
