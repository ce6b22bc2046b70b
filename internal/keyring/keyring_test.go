package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/bloomlet?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetEmptyValues(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetSessionUser(""); err == nil {
		t.Error("SetSessionUser(\"\") should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if _, err := GetSessionUser(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSessionUser() error = %v, want %v", err, ErrNotFound)
	}
}

func TestSessionUserLifecycle(t *testing.T) {
	gokeyring.MockInit()

	if err := SetSessionUser("user-123"); err != nil {
		t.Fatalf("SetSessionUser() failed: %v", err)
	}
	id, err := GetSessionUser()
	if err != nil || id != "user-123" {
		t.Fatalf("GetSessionUser() = %q, %v", id, err)
	}

	// The session and the connection string are stored independently
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no connection string, got %v", err)
	}

	if err := DeleteSessionUser(); err != nil {
		t.Fatalf("DeleteSessionUser() failed: %v", err)
	}
	if err := DeleteSessionUser(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSessionUser() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/bloomlet"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("mock keyring should be available")
	}

	gokeyring.MockInitWithError(errors.New("no dbus"))
	if IsAvailable() {
		t.Error("failing keyring should not be available")
	}
	if _, err := GetSessionUser(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("expected ErrKeyringUnavailable, got %v", err)
	}
	gokeyring.MockInit()
}
