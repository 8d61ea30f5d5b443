package apperrors_test

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"pasar/internal/apperrors"
)

func TestIsValidation(t *testing.T) {
	err := apperrors.NewValidation("stock cannot be negative")
	assert.True(t, apperrors.IsValidation(err))
	assert.True(t, apperrors.IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, apperrors.IsValidation(errors.New("plain error")))
	assert.False(t, apperrors.IsValidation(nil))
}

func TestTranslateIntegrity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "duplicate username",
			err:  errors.New("UNIQUE constraint failed: users.username"),
			want: "a user with this username already exists",
		},
		{
			name: "duplicate email",
			err:  errors.New("duplicate key value violates unique constraint \"idx_users_email\""),
			want: "a user with this email address already exists",
		},
		{
			name: "generic unique violation",
			err:  errors.New("UNIQUE constraint failed: widgets.code"),
			want: "this user already exists",
		},
		{
			name: "gorm duplicated key sentinel",
			err:  gorm.ErrDuplicatedKey,
			want: "this user already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperrors.TranslateIntegrity(tt.err, "user")
			assert.True(t, apperrors.IsValidation(got))
			assert.EqualError(t, got, tt.want)
		})
	}
}

func TestTranslateIntegrityPassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("disk is full")
	assert.Equal(t, plain, apperrors.TranslateIntegrity(plain, "user"))
	assert.NoError(t, apperrors.TranslateIntegrity(nil, "user"))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, apperrors.IsTransient(driver.ErrBadConn))
	assert.True(t, apperrors.IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, apperrors.IsTransient(errors.New("database is locked")))
	assert.True(t, apperrors.IsTransient(errors.New("read tcp 10.0.0.1:5432: connection reset by peer")))

	assert.False(t, apperrors.IsTransient(nil))
	assert.False(t, apperrors.IsTransient(apperrors.NewValidation("invalid email format")))
	assert.False(t, apperrors.IsTransient(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, apperrors.IsTransient(errors.New("syntax error near SELECT")))
}
