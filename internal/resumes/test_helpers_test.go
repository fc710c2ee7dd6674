package resumes

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"resume-builder/internal/shared/storage/object/local"
)

type countingClient struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	text    string
	err     error
}

func (c *countingClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.text, nil
}

func (c *countingClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type failingStore struct{}

func (failingStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, errors.New("disk full")
}

type failingRepo struct{}

func (failingRepo) Create(ctx context.Context, gen Generation) error {
	return errors.New("db down")
}

func (failingRepo) GetByID(ctx context.Context, id string) (Generation, error) {
	return Generation{}, ErrNotFound
}

const sampleText = "JANE DOE\njane@example.com\n\nEXPERIENCE\nAcme Corp, Engineer"

func newTestService(t *testing.T, client *countingClient) *Service {
	t.Helper()
	return &Service{
		LLM:   client,
		Store: local.New(t.TempDir()),
		Repo:  NewMemoryRepo(),
	}
}
