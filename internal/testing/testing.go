// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"vibes/internal/models"
)

// MockTokenSource is a test double for the gateway's token source.
type MockTokenSource struct {
	AccessToken   string
	Err           error
	Invalidations int
}

func (m *MockTokenSource) Token(context.Context) (string, error) {
	return m.AccessToken, m.Err
}

func (m *MockTokenSource) Invalidate() {
	m.Invalidations++
}

// MockCredentialStore is an in-memory credential store.
type MockCredentialStore struct {
	Creds map[string]models.Credential
	Err   error
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{Creds: map[string]models.Credential{}}
}

func (m *MockCredentialStore) Get(key string) (*models.Credential, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	cred, ok := m.Creds[key]
	if !ok {
		return nil, nil
	}
	c := cred
	return &c, nil
}

func (m *MockCredentialStore) Set(key string, cred models.Credential) error {
	if m.Err != nil {
		return m.Err
	}
	m.Creds[key] = cred
	return nil
}

func (m *MockCredentialStore) Delete(key string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Creds, key)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
