package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/auth/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByEmailErr error
	createErr     error
	setVerifyErr  error
	setResetErr   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) SetEmailVerificationToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifyErr != nil {
		return f.setVerifyErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerificationToken = token
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) ConsumeEmailVerificationToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok || u.EmailVerificationToken == "" || u.EmailVerificationToken != token {
		return domain.ErrTokenInvalid()
	}
	u.EmailVerificationToken = ""
	u.Enabled = true
	u.EmailVerified = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) SetPasswordResetToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setResetErr != nil {
		return f.setResetErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordResetToken = token
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) ConsumePasswordResetToken(ctx context.Context, userID, token, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok || u.PasswordResetToken == "" || u.PasswordResetToken != token {
		return domain.ErrTokenInvalid()
	}
	u.PasswordResetToken = ""
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

/*
fakeHasher hashes as "hash:<pw>" so tests can assert without bcrypt cost.
*/

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (f *fakeHasher) Hash(pw string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(pw)
	}
	return "hash:" + pw, nil
}

func (f *fakeHasher) Compare(hash, pw string) error {
	if f.compareFn != nil {
		return f.compareFn(hash, pw)
	}
	if hash != "hash:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

/*
fakeCodec issues "tok|<n>|<subject>|<role>|<expUnix>" so claims round-trip
without real signing. The counter keeps every issued token distinct.
*/

type fakeCodec struct {
	mu       sync.Mutex
	n        int
	issueErr error
}

func (f *fakeCodec) Issue(subject, role string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.n++
	exp := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("tok|%d|%s|%s|%d", f.n, subject, role, exp), nil
}

func (f *fakeCodec) Verify(token string) (TokenClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 5 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	exp, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return TokenClaims{}, domain.ErrTokenInvalid()
	}
	if time.Now().Unix() > exp {
		return TokenClaims{}, domain.ErrTokenExpired()
	}
	return TokenClaims{
		Subject: parts[2],
		Role:    parts[3],
		Exp:     time.Unix(exp, 0),
	}, nil
}

func (f *fakeCodec) IsValidFor(token string, u domain.User) bool {
	claims, err := f.Verify(token)
	if err != nil {
		return false
	}
	return claims.Subject == u.Email
}

/*
fakeMailer records sends; sendErr fails both kinds.
*/

type sentMail struct {
	email string
	token string
}

type fakeMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	sendErr       error
}

func (f *fakeMailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.verifications = append(f.verifications, sentMail{email: email, token: token})
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.resets = append(f.resets, sentMail{email: email, token: token})
	return nil
}

func (f *fakeMailer) lastVerification(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.verifications) == 0 {
		t.Fatalf("no verification email sent")
	}
	return f.verifications[len(f.verifications)-1]
}

func (f *fakeMailer) lastReset(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.resets) == 0 {
		t.Fatalf("no reset email sent")
	}
	return f.resets[len(f.resets)-1]
}

/*
Service under test
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeCodec, *fakeMailer, *[]auditEntry) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	codec := &fakeCodec{}
	mailer := &fakeMailer{}

	audits := &[]auditEntry{}
	cfg := Config{
		AccessTTL:             time.Hour,
		RefreshTTL:            7 * 24 * time.Hour,
		VerifyEmailTokenTTL:   24 * time.Hour,
		PasswordResetTokenTTL: time.Hour,
	}

	svc := NewService(users, hasher, codec, mailer, cfg).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return svc, users, hasher, codec, mailer, audits
}

// enabledUser seeds a verified, enabled user with password "pw".
func enabledUser(users *fakeUserRepo, id, email string) domain.User {
	u := domain.User{
		ID:           id,
		Username:     "user_" + id,
		Email:        email,
		PasswordHash: "hash:pw",
		Roles:        []string{domain.RoleUser},

		Enabled:               true,
		EmailVerified:         true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}
	users.put(u)
	return u
}

/*
Small assertions
*/

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
