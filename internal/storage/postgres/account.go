package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// hashCost is the bcrypt work factor.
var hashCost = bcrypt.DefaultCost

var (
	// ErrAccountNotFound is returned when no account has the username.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when creating a taken username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBadPassword is returned for empty or over-long passwords.
	ErrBadPassword = errors.New("password must be 1 to 72 bytes")
)

// Account is a login identity. Its ID keys the player's saved loot finder
// state.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	// LastLoginAt is nil until the first successful Login.
	LastLoginAt *time.Time
}

const accountColumns = `id, username, password_hash, created_at, last_login_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}

// AccountRepository stores accounts.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository backed by db.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account with a bcrypt hash of password.
//
// Postcondition: Returns the stored account, ErrAccountExists when the
// username is taken, or ErrBadPassword.
func (r *AccountRepository) Create(ctx context.Context, username, password string) (Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, err
	}
	acct, err := scanAccount(r.db.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash) VALUES ($1, $2) RETURNING `+accountColumns,
		username, hash,
	))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return Account{}, ErrAccountExists
	}
	if err != nil {
		return Account{}, fmt.Errorf("creating account %q: %w", username, err)
	}
	return acct, nil
}

// GetByUsername returns the account named username or ErrAccountNotFound.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (Account, error) {
	acct, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return Account{}, fmt.Errorf("querying account %q: %w", username, err)
	}
	return acct, err
}

// Authenticate returns the account when password matches its hash.
//
// Postcondition: Returns ErrAccountNotFound or ErrInvalidCredentials on
// failure.
func (r *AccountRepository) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, err := r.GetByUsername(ctx, username)
	if err != nil {
		return Account{}, err
	}
	if !CheckPassword(password, acct.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// Login authenticates username, creating the account on first use, and
// records the login time.
//
// Postcondition: Returns the account and whether it was just created, or
// ErrInvalidCredentials when the username exists with another password.
func (r *AccountRepository) Login(ctx context.Context, username, password string) (Account, bool, error) {
	acct, err := r.Authenticate(ctx, username, password)
	created := false
	if errors.Is(err, ErrAccountNotFound) {
		acct, err = r.Create(ctx, username, password)
		created = err == nil
		if errors.Is(err, ErrAccountExists) {
			// another connection created the name first
			acct, err = r.Authenticate(ctx, username, password)
		}
	}
	if err != nil {
		return Account{}, false, err
	}
	if err := r.touchLogin(ctx, &acct); err != nil {
		return Account{}, false, err
	}
	return acct, created, nil
}

func (r *AccountRepository) touchLogin(ctx context.Context, acct *Account) error {
	var at time.Time
	if err := r.db.QueryRow(ctx,
		`UPDATE accounts SET last_login_at = NOW() WHERE id = $1 RETURNING last_login_at`, acct.ID,
	).Scan(&at); err != nil {
		return fmt.Errorf("recording login for %q: %w", acct.Username, err)
	}
	acct.LastLoginAt = &at
	return nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" || len(password) > MaxPasswordBytes {
		return "", ErrBadPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
