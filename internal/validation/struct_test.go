package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Username  string `json:"username" validate:"required,max=8"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	valid := signupForm{Username: "alice", Email: "alice@example.com", Password: "pw", Password2: "pw"}

	tests := []struct {
		name    string
		mutate  func(*signupForm)
		wantErr string
	}{
		{"Valid", func(*signupForm) {}, ""},
		{"Missing username", func(f *signupForm) { f.Username = "" }, "username is required"},
		{"Long username", func(f *signupForm) { f.Username = "abcdefghi" }, "username must be at most 8 characters"},
		{"Bad email", func(f *signupForm) { f.Email = "nope" }, "Invalid email address."},
		{"Mismatched passwords", func(f *signupForm) { f.Password2 = "other" }, "password2 must match password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := Struct(&f)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

type reading struct {
	Raw string `json:"raw" validate:"max=4"`
}

type limitRow struct {
	Direction string  `json:"direction" validate:"max=2"`
	Target    reading `json:"target"`
}

func TestStruct_NestedFieldNames(t *testing.T) {
	t.Parallel()
	assert.EqualError(t, Struct(&limitRow{Direction: "up", Target: reading{Raw: "12345"}}),
		"target must be at most 4 characters")
	assert.EqualError(t, Struct(&limitRow{Direction: "down"}),
		"direction must be at most 2 characters")
}
