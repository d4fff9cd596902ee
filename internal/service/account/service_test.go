package account

import (
	"context"
	"testing"
	"time"

	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"github.com/lazypower/cony/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret-at-least-32-chars-long-for-security"

func setup(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jwt := auth.NewJWTManager(secret, "cony-test", time.Hour)
	return NewService(zap.NewNop(), db, db, db, jwt, 4, WithLocation(time.UTC)), db
}

func signUp(t *testing.T, svc *Service) AuthResult {
	t.Helper()
	res, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    " Ana@Example.com ",
		Password: "s3cret-pass",
		Name:     "Ana",
	})
	require.NoError(t, err)
	return res
}

func TestSignUp(t *testing.T) {
	svc, db := setup(t)

	res := signUp(t, svc)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@example.com", res.Profile.Email)
	assert.Equal(t, domain.RolePatient, res.Profile.Role, "sign-up always creates patients")
	assert.Equal(t, domain.RolePatient.Navigation(), res.Navigation)

	// Patient clinical row exists, sign-in activity recorded
	_, err := db.GetPatient(res.Profile.ID)
	require.NoError(t, err)
	acts, err := db.GetActivity(res.Profile.ID, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, store.ActivitySignIn, acts[0].Kind)
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "  ", Password: "short", Name: ""})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	fields := map[string]bool{}
	for _, fe := range ve.Errors {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"email": true, "password": true, "name": true}, fields)
}

func TestSignUpDefaultsName(t *testing.T) {
	svc, _ := setup(t)

	res, err := svc.SignUp(context.Background(), SignUpInput{Email: "Maria.Lopez@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "maria.lopez", res.Profile.Name)

	_, err = svc.SignUp(context.Background(), SignUpInput{Email: "not-an-email", Password: "s3cret-pass"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "email", ve.Errors[0].Field)
}

func TestSignUpDuplicate(t *testing.T) {
	svc, _ := setup(t)
	signUp(t, svc)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "ana@example.com", Password: "another-pass", Name: "Ana 2"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSignIn(t *testing.T) {
	svc, _ := setup(t)
	created := signUp(t, svc)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, SignInInput{Email: "ANA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, created.Profile.ID, res.Profile.ID)
	assert.NotEqual(t, created.Token, res.Token, "each sign-in is a new session")

	_, err = svc.SignIn(ctx, SignInInput{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.SignIn(ctx, SignInInput{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.SignIn(ctx, SignInInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthenticateAndSignOut(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	res := signUp(t, svc)

	sess, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Profile.ID, sess.UserID)
	assert.Equal(t, domain.RolePatient, sess.Role)

	me, err := svc.Me(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Profile.Name)

	require.NoError(t, svc.SignOut(ctx, sess))

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "revoked sessions stop authenticating")
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Authenticate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticateUnknownSession(t *testing.T) {
	svc, _ := setup(t)
	res := signUp(t, svc)

	// A validly signed token whose session row was never created.
	jwt := auth.NewJWTManager(secret, "cony-test", time.Hour)
	token, _, err := jwt.Issue(auth.Session{UserID: res.Profile.ID, Role: domain.RoleAdmin, SessionID: "forged"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterWithRole(t *testing.T) {
	svc, db := setup(t)

	p, err := svc.Register(context.Background(), SignUpInput{Email: "doc@example.com", Password: "doctor-pass", Name: "Doc"}, domain.RolePsychologist)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePsychologist, p.Role)

	psychs, err := db.ListPsychologists()
	require.NoError(t, err)
	assert.Len(t, psychs, 1)
}
