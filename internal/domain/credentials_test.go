package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name        string
		credentials Credentials
		wantFields  []string
	}{
		{
			name:        "valid",
			credentials: Credentials{Email: "ada@example.com", Password: "secret1"},
		},
		{
			name:        "missing everything",
			credentials: Credentials{},
			wantFields:  []string{"email", "password"},
		},
		{
			name:        "malformed email",
			credentials: Credentials{Email: "not-an-email", Password: "secret1"},
			wantFields:  []string{"email"},
		},
		{
			name:        "short password",
			credentials: Credentials{Email: "ada@example.com", Password: "12345"},
			wantFields:  []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.credentials.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var fields FieldErrors
			require.ErrorAs(t, err, &fields)
			require.Len(t, fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, fields, field)
			}
		})
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret1",
	}
	assert.NoError(t, valid.Validate())

	missingNames := Registration{Email: "ada@example.com", Password: "secret1"}
	var fields FieldErrors
	require.ErrorAs(t, missingNames.Validate(), &fields)
	assert.Contains(t, fields, "firstName")
	assert.Contains(t, fields, "lastName")

	longName := valid
	longName.FirstName = strings.Repeat("a", 51)
	fields = nil
	require.ErrorAs(t, longName.Validate(), &fields)
	assert.Contains(t, fields["firstName"], "cannot exceed 50")
}

func TestFieldErrorsMessageIsStable(t *testing.T) {
	err := FieldErrors{
		"password": "Password is required",
		"email":    "Email is required",
	}
	assert.Equal(t, "email: Email is required; password: Password is required", err.Error())
}
