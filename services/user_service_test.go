package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/utils"
)

func registration() RegisterInput {
	return RegisterInput{
		FirstName: "Anna",
		LastName:  "Ivanova",
		Username:  "anna",
		Birthday:  "1995-04-12",
		Password:  "s3cret-pass",
		Language:  "be",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	svc := NewUserService(db, tokens, clock)
	ctx := context.Background()

	user, err := svc.Register(ctx, registration())
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = svc.Register(ctx, registration())
	assert.ErrorIs(t, err, ErrConflict)

	token, logged, err := svc.Login(ctx, LoginInput{Username: "anna", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = svc.Login(ctx, LoginInput{Username: "anna", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "be", profile.Profile.Language)
	assert.Equal(t, "be", svc.Language(ctx, user.ID))
	assert.Empty(t, svc.Language(ctx, 999))
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, utils.NewTokenManager("test-secret", time.Hour), clock)

	cases := map[string]func(in *RegisterInput){
		"short password":     func(in *RegisterInput) { in.Password = "abc123" },
		"numeric password":   func(in *RegisterInput) { in.Password = "1234567890" },
		"password=username":  func(in *RegisterInput) { in.Username, in.Password = "annaanna", "AnnaAnna" },
		"birthday in future": func(in *RegisterInput) { in.Birthday = "2024-01-16" },
		"malformed birthday": func(in *RegisterInput) { in.Birthday = "12.04.1995" },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			in := registration()
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	in := registration()
	in.Birthday = "2024-01-15"
	_, err := svc.Register(context.Background(), in)
	assert.NoError(t, err, "born today is allowed")
}
