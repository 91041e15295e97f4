package auth

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psymatch/internal/database"
	"psymatch/internal/repository"
)

var codeInBody = regexp.MustCompile(`\d{6}`)

// captureMailer records outgoing mail so tests can read the codes a real
// deployment would deliver over SMTP.
type captureMailer struct {
	sent []string
}

func (m *captureMailer) Send(_ context.Context, _ []string, _, body string) error {
	m.sent = append(m.sent, body)
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	code := codeInBody.FindString(m.sent[len(m.sent)-1])
	require.NotEmpty(t, code)
	return code
}

type staticJWT struct{}

func (staticJWT) GenerateToken(userID int64, role string) (string, error) {
	return fmt.Sprintf("token-%d-%s", userID, role), nil
}

type noopReconciler struct{}

func (noopReconciler) ReconcileToken(_ context.Context, _ string, _, _ int64) (int64, error) {
	return 0, nil
}

func newAuthService(t *testing.T, cooldown time.Duration) (*Service, *captureMailer) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mailer := &captureMailer{}
	svc := NewService(
		repository.NewUserRepository(db),
		repository.NewClientProfileRepository(db),
		repository.NewApplicationRepository(db),
		repository.NewPsychologistProfileRepository(db),
		noopReconciler{},
		staticJWT{},
		mailer,
		"test-pepper",
		15*time.Minute,
		cooldown,
	)
	return svc, mailer
}

func TestRegister_CreatesClientProfile(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Name:     "Aigerim",
		Email:    "Aigerim@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	require.NotNil(t, user.Email)
	assert.Equal(t, "aigerim@example.com", *user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.False(t, user.IsPsychologist)
	assert.Len(t, mailer.sent, 1, "registration sends the first verification code")
}

func TestRegister_ApplicantGetsPendingApplication(t *testing.T) {
	svc, _ := newAuthService(t, 0)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Name:                  "Maria",
		Email:                 "maria@example.com",
		Password:              "secret1",
		WantsToBePsychologist: true,
	})
	require.NoError(t, err)

	app, err := svc.applications.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, app.ExpiryDate)

	profile, err := svc.psychProfiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsVerified)
	require.NotNil(t, profile.ApplicationID)
	assert.Equal(t, app.ID, *profile.ApplicationID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "a@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin_RequiresVerifiedEmail(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.NoError(t, svc.ConfirmEmailVerification(ctx, "a@example.com", mailer.lastCode(t)))

	result, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.User.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmailVerification(ctx, "a@example.com", mailer.lastCode(t)))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConfirm_WrongCode(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "000001"
	}
	err = svc.ConfirmEmailVerification(ctx, "a@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)

	// the real code still works after a failed attempt
	require.NoError(t, svc.ConfirmEmailVerification(ctx, "a@example.com", mailer.lastCode(t)))
}

func TestConfirm_CodeIsSingleUse(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	code := mailer.lastCode(t)
	require.NoError(t, svc.ConfirmEmailVerification(ctx, "a@example.com", code))

	err = svc.ConfirmEmailVerification(ctx, "a@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
}

func TestConfirm_BadFormat(t *testing.T) {
	svc, _ := newAuthService(t, 0)

	err := svc.ConfirmEmailVerification(context.Background(), "a@example.com", "12ab56")
	assert.ErrorIs(t, err, ErrInvalidVerificationCodeFormat)
}

func TestRequestVerification_ResendCooldown(t *testing.T) {
	svc, _ := newAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.RequestEmailVerification(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestRequestVerification_UnknownEmailIsOpaque(t *testing.T) {
	svc, mailer := newAuthService(t, 0)

	result, err := svc.RequestEmailVerification(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "accepted", result.Status)
	assert.Empty(t, mailer.sent)
}

func TestChangePassword(t *testing.T) {
	svc, mailer := newAuthService(t, 0)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmailVerification(ctx, "a@example.com", mailer.lastCode(t)))

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret2"})
	require.NoError(t, err)
}

func TestGenerateNumericCode_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateNumericCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestHashCode_PepperChangesDigest(t *testing.T) {
	assert.Equal(t, hashCode("123456", "p"), hashCode("123456", "p"))
	assert.NotEqual(t, hashCode("123456", "p"), hashCode("123456", "q"))
	assert.NotEqual(t, hashCode("123456", "p"), hashCode("123457", "p"))
}
