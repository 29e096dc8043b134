package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contact-agenda/internal/domains/user"
	"contact-agenda/internal/domains/user/service"
	"contact-agenda/internal/shared/form"
	"contact-agenda/internal/testutil"
	"contact-agenda/pkg/password"
)

const strongPassword = "Tr4vessia!x"

func newService() (user.Service, *testutil.Store, *password.Hasher) {
	store := testutil.NewStore()
	hasher := password.NewHasher(bcrypt.MinCost)
	return service.NewUserService(store.Users(), hasher, password.NewPolicy()), store, hasher
}

func registration() user.RegisterForm {
	return user.RegisterForm{
		Username:  "ana",
		FirstName: "Ana",
		LastName:  "Lima",
		Email:     "ana@example.com",
		Password1: strongPassword,
		Password2: strongPassword,
	}
}

func register(t *testing.T, svc user.Service) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)
	return u
}

func formErrors(t *testing.T, err error) form.Errors {
	t.Helper()
	errs, ok := form.As(err)
	require.True(t, ok, "expected form errors, got %v", err)
	return errs
}

func TestRegister_CreatesActiveUser(t *testing.T) {
	svc, store, hasher := newService()

	u := register(t, svc)
	stored, ok := store.User(u.ID)
	require.True(t, ok)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsStaff)
	assert.NotEqual(t, strongPassword, stored.PasswordHash)
	assert.True(t, hasher.Verify(stored.PasswordHash, strongPassword))
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, store, _ := newService()
	f := registration()
	f.Password2 = "Tr4vessia!y"

	_, err := svc.Register(context.Background(), f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgPasswordMismatch}, errs["password2"])
	assert.Equal(t, 0, store.UserCount())
}

func TestRegister_DuplicateEmailIgnoresCase(t *testing.T) {
	svc, store, _ := newService()
	register(t, svc)

	f := registration()
	f.Username = "other"
	f.Email = "ANA@Example.com"
	_, err := svc.Register(context.Background(), f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgEmailTaken}, errs["email"])
	assert.Equal(t, 1, store.UserCount())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newService()
	register(t, svc)

	f := registration()
	f.Email = "other@example.com"
	_, err := svc.Register(context.Background(), f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgUsernameTaken}, errs["username"])
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, store, _ := newService()
	f := registration()
	f.Password1, f.Password2 = "12345678", "12345678"

	_, err := svc.Register(context.Background(), f)
	errs := formErrors(t, err)
	assert.Contains(t, errs["password1"], "This password is entirely numeric.")
	assert.Equal(t, 0, store.UserCount())
}

func TestRegister_RequiredFields(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Register(context.Background(), user.RegisterForm{Username: "bad name!"})
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgInvalidUsername}, errs["username"])
	for _, field := range []string{"first_name", "last_name", "email", "password1", "password2"} {
		assert.Equal(t, []string{user.MsgRequired}, errs[field], field)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newService()
	u := register(t, svc)

	got, err := svc.Authenticate(context.Background(), user.LoginForm{Username: "ana", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	for _, f := range []user.LoginForm{
		{Username: "ana", Password: "wrong-password"},
		{Username: "nobody", Password: strongPassword},
		{Username: "", Password: ""},
	} {
		_, err := svc.Authenticate(context.Background(), f)
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	}
}

func TestAuthenticate_InactiveUserIsInvalidLogin(t *testing.T) {
	svc, store, hasher := newService()
	hash, err := hasher.Hash(strongPassword)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), &user.User{
		Username:     "dormant",
		PasswordHash: hash,
		FirstName:    "Dora",
		LastName:     "Mant",
		Email:        "dora@example.com",
	}))

	_, err = svc.Authenticate(context.Background(), user.LoginForm{Username: "dormant", Password: strongPassword})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.ErrorIs(t, err, user.ErrUserInactive)
}

func profile() user.ProfileForm {
	return user.ProfileForm{Username: "ana", FirstName: "Ana", LastName: "Lima", Email: "ana@example.com"}
}

func TestUpdateProfile_EmptyPasswordsKeepHash(t *testing.T) {
	svc, store, _ := newService()
	u := register(t, svc)
	before, _ := store.User(u.ID)

	f := profile()
	f.FirstName = "Anabela"
	_, err := svc.UpdateProfile(context.Background(), u.ID, f)
	require.NoError(t, err)

	after, _ := store.User(u.ID)
	assert.Equal(t, "Anabela", after.FirstName)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestUpdateProfile_ChangesPassword(t *testing.T) {
	svc, store, hasher := newService()
	u := register(t, svc)

	f := profile()
	f.Password1, f.Password2 = "N0vaSenha#2", "N0vaSenha#2"
	_, err := svc.UpdateProfile(context.Background(), u.ID, f)
	require.NoError(t, err)

	after, _ := store.User(u.ID)
	assert.True(t, hasher.Verify(after.PasswordHash, "N0vaSenha#2"))
}

func TestUpdateProfile_HalfPasswordPairFails(t *testing.T) {
	svc, store, _ := newService()
	u := register(t, svc)
	before, _ := store.User(u.ID)

	f := profile()
	f.FirstName = "Anabela"
	f.Password1 = "N0vaSenha#2"
	_, err := svc.UpdateProfile(context.Background(), u.ID, f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgPasswordMismatch}, errs["password2"])

	after, _ := store.User(u.ID)
	assert.Equal(t, before, after)
}

func TestUpdateProfile_MismatchedPasswordPairFails(t *testing.T) {
	svc, store, hasher := newService()
	u := register(t, svc)
	before, _ := store.User(u.ID)

	f := profile()
	f.FirstName = "Anabela"
	f.Password1, f.Password2 = "N0vaSenha#2", "N0vaSenha#3"
	_, err := svc.UpdateProfile(context.Background(), u.ID, f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgPasswordMismatch}, errs["password2"])

	after, _ := store.User(u.ID)
	assert.Equal(t, before, after)
	assert.True(t, hasher.Verify(after.PasswordHash, strongPassword))
}

func TestUpdateProfile_NameLength(t *testing.T) {
	svc, _, _ := newService()
	u := register(t, svc)

	f := profile()
	f.FirstName = "A"
	_, err := svc.UpdateProfile(context.Background(), u.ID, f)
	errs := formErrors(t, err)
	assert.True(t, errs.Has("first_name"))
}

func TestUpdateProfile_EmailUniqueAgainstOthersOnly(t *testing.T) {
	svc, _, _ := newService()
	u := register(t, svc)

	other := registration()
	other.Username, other.Email = "bia", "bia@example.com"
	_, err := svc.Register(context.Background(), other)
	require.NoError(t, err)

	// Keeping one's own address, in any case, is fine.
	f := profile()
	f.Email = "Ana@Example.com"
	_, err = svc.UpdateProfile(context.Background(), u.ID, f)
	require.NoError(t, err)

	f.Email = "BIA@example.com"
	_, err = svc.UpdateProfile(context.Background(), u.ID, f)
	errs := formErrors(t, err)
	assert.Equal(t, []string{user.MsgEmailTaken}, errs["email"])
}
