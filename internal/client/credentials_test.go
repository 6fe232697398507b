package client

import (
	"path/filepath"
	"testing"
)

func TestCredentialsSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	// Missing file reads as empty credentials
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials on missing file: %v", err)
	}
	if creds.Token != "" || creds.Email != "" {
		t.Errorf("expected empty credentials, got %+v", creds)
	}

	want := Credentials{Token: "jwt-token", Email: "teacher@example.com"}
	if err := SaveCredentials(path, want); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	creds, err = LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if creds != want {
		t.Errorf("loaded %+v, want %+v", creds, want)
	}

	if err := ClearCredentials(path); err != nil {
		t.Fatalf("ClearCredentials failed: %v", err)
	}
	creds, err = LoadCredentials(path)
	if err != nil {
		t.Fatal(err)
	}
	if creds.Token != "" {
		t.Error("credentials should be gone after clearing")
	}

	// Clearing twice is fine
	if err := ClearCredentials(path); err != nil {
		t.Errorf("repeat clear should be a no-op, got %v", err)
	}
}
