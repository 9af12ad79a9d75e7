package auth

import (
	"os"
	"time"
)

// EnvironmentStore is a read-only CredentialStore over PATREON_EMAIL/PATREON_PASSWORD,
// falling back to the plain EMAIL/PASSWORD pair.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. An empty email matches any address.
func (e *EnvironmentStore) Retrieve(email string) (*Account, error) {
	envEmail, password := lookupEnv()
	if envEmail == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	if email != "" && email != envEmail {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Email:        envEmail,
		Password:     password,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment carries credentials
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(email string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist for email
func (e *EnvironmentStore) Exists(email string) bool {
	_, err := e.Retrieve(email)
	return err == nil
}

func lookupEnv() (string, string) {
	email := os.Getenv("PATREON_EMAIL")
	if email == "" {
		email = os.Getenv("EMAIL")
	}
	password := os.Getenv("PATREON_PASSWORD")
	if password == "" {
		password = os.Getenv("PASSWORD")
	}
	return email, password
}
