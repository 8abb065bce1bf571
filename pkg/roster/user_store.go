package roster

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rangeops/rangecore/pkg/team"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidUsername    = errors.New("username must be 3-50 alphanumeric characters")
	ErrPasswordHashFailed = errors.New("failed to hash password")
)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
	BcryptCost        = 12 // Cost factor for bcrypt
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// User represents a participant. PasswordHash never leaves this package
// except through VerifyPassword; safe projections go through Basic.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         team.Role `json:"role"`
	TeamID       string    `json:"teamId,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    int64     `json:"created_at"`
}

// UserStore manages user storage and credential verification.
type UserStore struct {
	users       map[string]*User  // userID -> User
	usernameMap map[string]string // username -> userID
	mu          sync.RWMutex
}

// NewUserStore creates a new user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:       make(map[string]*User),
		usernameMap: make(map[string]string),
	}
}

// CreateUser creates a new user with a hashed password. New users start
// enabled (online/active).
func (s *UserStore) CreateUser(username, password string, role team.Role) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if _, exists := s.usernameMap[username]; exists {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %s", team.ErrInvalidRole, role)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		Enabled:      true,
		CreatedAt:    time.Now().UnixMilli(),
	}

	s.users[user.ID] = user
	s.usernameMap[username] = user.ID

	return cloneUser(user), nil
}

// GetUserByUsername retrieves a user by username.
func (s *UserStore) GetUserByUsername(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == "" {
		return nil, ErrInvalidUsername
	}

	userID, exists := s.usernameMap[username]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return cloneUser(s.users[userID]), nil
}

// GetUserByID retrieves a user by ID.
func (s *UserStore) GetUserByID(userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return cloneUser(user), nil
}

// VerifyPassword verifies a password against a user's stored hash.
func (s *UserStore) VerifyPassword(user *User, password string) bool {
	if user == nil || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// ListUsers returns all users.
func (s *UserStore) ListUsers() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}
	return users
}

// ListByRole returns all users with the given role.
func (s *UserStore) ListByRole(role team.Role) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*User
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, cloneUser(user))
		}
	}
	return users
}

// SetEnabled flips a user's online/active flag.
func (s *UserStore) SetEnabled(userID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	user.Enabled = enabled
	return nil
}

// DeleteUser deletes a user.
func (s *UserStore) DeleteUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	delete(s.users, userID)
	delete(s.usernameMap, user.Username)
	return nil
}

// ChangePassword changes a user's password.
func (s *UserStore) ChangePassword(userID, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, exists := s.users[userID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}
	user.PasswordHash = hashedPassword
	return nil
}

// Helper functions

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func validateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrInvalidUsername
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
