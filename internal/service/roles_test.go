package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/repository"
	"github.com/iliyamo/furniture-catalog/internal/repository/memstore"
)

func TestChangeRolePromotesUser(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	log, _ := quietLogger()

	sum, err := NewRoleService(stores, nil, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.Summary{ID: user.ID, Name: "Alice Smith", Email: "a@x.com", Role: model.RoleAdmin}, sum)

	admin, err := stores.Admins.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Name, admin.Name)
	assert.Equal(t, user.Email, admin.Email)
	assert.Equal(t, user.PasswordHash, admin.PasswordHash)

	_, err = stores.Users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChangeRoleToUserIsNoop(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	log, _ := quietLogger()

	sum, err := NewRoleService(stores, nil, log).ChangeRole(ctx, user.ID, model.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, sum.Role)

	_, err = stores.Users.GetByID(ctx, user.ID)
	assert.NoError(t, err)
	_, err = stores.Admins.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChangeRoleValidation(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	log, _ := quietLogger()
	svc := NewRoleService(stores, nil, log)

	_, err := svc.ChangeRole(ctx, user.ID, model.Role("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.ChangeRole(ctx, "missing", model.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChangeRoleAdminCreateFailsLeavesUser(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	stores.Admins = failingCreate{PrincipalStore: stores.Admins, err: repository.ErrEmailExists}
	log, _ := quietLogger()

	_, err := NewRoleService(stores, nil, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	_, err = stores.Users.GetByID(ctx, user.ID)
	assert.NoError(t, err, "user must survive a failed admin write")
}

func TestChangeRoleDeleteFailureQueuesRepair(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	realUsers := stores.Users
	stores.Users = failingDelete{PrincipalStore: realUsers, err: errBoom}
	q := &recordingQueue{}
	log, hook := quietLogger()

	sum, err := NewRoleService(stores, q, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	require.NoError(t, err, "the admin exists, so the escalation reports success")
	assert.Equal(t, model.RoleAdmin, sum.Role)

	require.Len(t, q.events, 1)
	assert.Equal(t, user.ID, q.events[0].PrincipalID)
	assert.Equal(t, "a@x.com", q.events[0].Email)
	assert.Contains(t, q.events[0].Reason, "boom")

	var sawError bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			sawError = true
		}
	}
	assert.True(t, sawError)

	// the repair consumer later reconciles with a working store
	stores.Users = realUsers
	require.NoError(t, NewRoleService(stores, nil, log).Reconcile(ctx, user.ID))
	_, err = stores.Users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = stores.Admins.GetByID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestChangeRoleDeleteFailureWithoutQueue(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	stores.Users = failingDelete{PrincipalStore: stores.Users, err: errBoom}
	log, _ := quietLogger()

	_, err := NewRoleService(stores, nil, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	assert.NoError(t, err)
}

func TestChangeRoleRepairOutlivesRequestDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	stores.Users = expiringDelete{PrincipalStore: stores.Users, cancel: cancel}
	q := &recordingQueue{}
	log, _ := quietLogger()

	_, err := NewRoleService(stores, q, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	require.Len(t, q.events, 1)
	assert.Equal(t, user.ID, q.events[0].PrincipalID)
	assert.Contains(t, q.events[0].Reason, "deadline exceeded")
}

func TestChangeRoleFinishesHalfDonePromotion(t *testing.T) {
	ctx := context.Background()
	stores := memstore.New()
	user := seedUser(t, stores, "Alice Smith", "a@x.com")
	leftover := &model.Principal{ID: user.ID, Name: user.Name, Email: user.Email, PasswordHash: user.PasswordHash, Role: model.RoleAdmin}
	require.NoError(t, stores.Admins.Create(ctx, leftover))
	log, _ := quietLogger()

	sum, err := NewRoleService(stores, nil, log).ChangeRole(ctx, user.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.Summary{ID: user.ID, Name: "Alice Smith", Email: "a@x.com", Role: model.RoleAdmin}, sum)

	_, err = stores.Users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	admins, err := stores.Admins.List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	log, _ := quietLogger()

	t.Run("no admin means nothing to repair", func(t *testing.T) {
		stores := memstore.New()
		user := seedUser(t, stores, "Alice Smith", "a@x.com")
		require.NoError(t, NewRoleService(stores, nil, log).Reconcile(ctx, user.ID))
		_, err := stores.Users.GetByID(ctx, user.ID)
		assert.NoError(t, err, "a user without an admin twin is left alone")
	})

	t.Run("already consistent", func(t *testing.T) {
		stores := memstore.New()
		admin := &model.Principal{ID: "a-1", Name: "Root", Email: "root@x.com"}
		require.NoError(t, stores.Admins.Create(ctx, admin))
		assert.NoError(t, NewRoleService(stores, nil, log).Reconcile(ctx, "a-1"))
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		stores := memstore.New()
		admin := &model.Principal{ID: "a-1", Name: "Root", Email: "root@x.com"}
		require.NoError(t, stores.Admins.Create(ctx, admin))
		stores.Users = failingDelete{PrincipalStore: stores.Users, err: errBoom}
		assert.ErrorIs(t, NewRoleService(stores, nil, log).Reconcile(ctx, "a-1"), errBoom)
	})
}
