package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(repo *userRepoStub, tokens *tokenStub) *AuthService {
	return NewAuthService(repo, tokens).WithBcryptCost(bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	var saved *models.User
	repo := &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = "u1"
			saved = u
			return nil
		},
	}
	tokens := &tokenStub{token: "signed"}
	svc := newAuthService(repo, tokens)

	res, err := svc.Register(context.Background(), RegisterInput{Name: " A ", Email: "A@X.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "signed", res.Token)
	assert.Equal(t, "u1", tokens.sub)
	assert.Equal(t, "a@x.com", saved.Email)
	assert.Equal(t, "A", saved.Name)
	assert.NotEqual(t, "123456", saved.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("123456")))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "123456"}, "Name is required"},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "123456"}, "Please include a valid email"},
		{"short password", RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"}, "Please enter a password with 6 or more characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(&userRepoStub{}, &tokenStub{})
			_, err := svc.Register(context.Background(), tt.in)
			assertCode(t, err, models.CodeValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	repo := &userRepoStub{
		createFn: func(context.Context, *models.User) error { return models.NewConflictError("User already exists") },
	}
	svc := newAuthService(repo, &tokenStub{})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "123456"})
	assertCode(t, err, models.CodeConflict)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{ID: "u1", Email: "a@x.com", Password: string(hash)}

	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, models.NewNotFoundError("User", email)
		},
	}

	tests := []struct {
		name     string
		in       LoginInput
		wantCode string
	}{
		{"valid", LoginInput{Email: "A@x.com", Password: "123456"}, ""},
		{"wrong password", LoginInput{Email: "a@x.com", Password: "654321"}, models.CodeInvalidCredentials},
		{"unknown email", LoginInput{Email: "b@x.com", Password: "123456"}, models.CodeInvalidCredentials},
		{"missing password", LoginInput{Email: "a@x.com"}, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(repo, &tokenStub{token: "signed"})
			res, err := svc.Login(context.Background(), tt.in)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", res.User.ID)
			assert.Equal(t, "signed", res.Token)
		})
	}
}

func TestLogin_MessagesDoNotLeak(t *testing.T) {
	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
	}
	svc := newAuthService(repo, &tokenStub{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "whatever"})
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestUpdateProfile_TruthyFieldsOnly(t *testing.T) {
	var got map[string]any
	repo := &userRepoStub{
		updateProfileFn: func(_ context.Context, id string, fields map[string]any) (*models.User, error) {
			got = fields
			return &models.User{ID: id, Name: "Ada", Bio: "new"}, nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", Bio: "new"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bio": "new"}, got)
	assert.Equal(t, "Ada", user.Name)
}
