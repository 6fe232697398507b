package client

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Credentials are the signed-in user's token and email. They are persisted
// together and cleared together on sign-out.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// DefaultCredentialsPath returns the per-user credentials file location
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reverselearn", "credentials.json"), nil
}

// SaveCredentials writes the credentials file, creating its directory
func SaveCredentials(path string, creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadCredentials reads the credentials file. A missing file returns empty
// credentials, not an error.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// ClearCredentials signs the user out by removing the stored token and email
func ClearCredentials(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
