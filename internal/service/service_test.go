package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/queue"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// seedUser registers a user through Accounts so that the hash is real.
func seedUser(t *testing.T, stores *repository.Stores, name, email string) *model.Principal {
	t.Helper()
	p, err := NewAccounts(stores, bcrypt.MinCost).Register(context.Background(), model.KindUser, name, email, "secret1")
	require.NoError(t, err)
	return p
}

// failingDelete wraps a principal store and fails every Delete.
type failingDelete struct {
	repository.PrincipalStore
	err error
}

func (f failingDelete) Delete(context.Context, string) error { return f.err }

// expiringDelete cancels the request context and then fails, like a delete
// cut off by the request deadline.
type expiringDelete struct {
	repository.PrincipalStore
	cancel context.CancelFunc
}

func (f expiringDelete) Delete(context.Context, string) error {
	f.cancel()
	return context.DeadlineExceeded
}

// failingCreate wraps a principal store and fails every Create.
type failingCreate struct {
	repository.PrincipalStore
	err error
}

func (f failingCreate) Create(context.Context, *model.Principal) error { return f.err }

// recordingQueue captures published repair events.
type recordingQueue struct {
	mu     sync.Mutex
	events []queue.PrincipalRepairEvent
	err    error
}

func (q *recordingQueue) PublishPrincipalRepair(ctx context.Context, ev queue.PrincipalRepairEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, ev)
	return nil
}

// recordingFiles is a FileRemover that remembers what it removed.
type recordingFiles struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (f *recordingFiles) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, path)
	return nil
}

func (f *recordingFiles) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

var errBoom = errors.New("boom")
