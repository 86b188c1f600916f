package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "password123", false},
		{"Single Character", "x", false},
		{"Exactly Max Length", strings.Repeat("a", 72), false},
		{"Empty", "", true},
		{"Too Long", strings.Repeat("a", 73), true},
		{"Multibyte Over Limit", strings.Repeat("é", 37), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Dotted", "john.doe", false},
		{"Single Character", "a", false},
		{"Exactly Max Length", strings.Repeat("u", 64), false},
		{"Empty", "", true},
		{"Too Long", strings.Repeat("u", 65), true},
		{"Illegal Chars", "user@123", true},
		{"Slash", "a/b", true},
		{"Space", "two words", true},
		{"Single Dot", ".", true},
		{"Double Dot", "..", true},
		{"Dots Only", "...", true},
		{"Leading Dot", ".alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
