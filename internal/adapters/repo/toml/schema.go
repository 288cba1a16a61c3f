package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int              `toml:"version"`
	Principal *principalSchema `toml:"principal,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type principalSchema struct {
	ID         string `toml:"id"`
	Email      string `toml:"email"`
	FirstName  string `toml:"first_name"`
	LastName   string `toml:"last_name"`
	LoggedInAt string `toml:"logged_in_at,omitempty"`
}
