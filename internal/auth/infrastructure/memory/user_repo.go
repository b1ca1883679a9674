package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

// UserRepo is an in-memory implementation of application.UserRepo for dev
// mode and tests. Mutations hold the lock for the whole read-check-write, so
// the conditional token consumes keep their single-use guarantee.
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byEmail    map[string]string // email -> userID
	byUsername map[string]string // username -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[string]domain.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}
	if _, exists := r.byUsername[u.Username]; exists {
		return domain.User{}, domain.ErrUsernameTaken()
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailTaken()
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.byUsername[u.Username] = u.ID
	return u, nil
}

func (r *UserRepo) SetEmailVerificationToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerificationToken = token
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) ConsumeEmailVerificationToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if u.EmailVerificationToken == "" || u.EmailVerificationToken != token {
		return domain.ErrTokenInvalid()
	}
	u.Enabled = true
	u.EmailVerified = true
	u.EmailVerificationToken = ""
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) SetPasswordResetToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordResetToken = token
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) ConsumePasswordResetToken(ctx context.Context, userID, token, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if u.PasswordResetToken == "" || u.PasswordResetToken != token {
		return domain.ErrTokenInvalid()
	}
	u.PasswordHash = newHash
	u.PasswordResetToken = ""
	r.byID[userID] = u
	return nil
}
