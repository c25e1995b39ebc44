package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/furniture-catalog/internal/metrics"
	"github.com/iliyamo/furniture-catalog/internal/model"
	"github.com/iliyamo/furniture-catalog/internal/queue"
	"github.com/iliyamo/furniture-catalog/internal/repository"
)

const repairPublishTimeout = 5 * time.Second

// ErrInvalidRole is returned for a requested role other than user or admin.
var ErrInvalidRole = errors.New("role must be user or admin")

// RepairQueue accepts repair requests for duplicated principals.
type RepairQueue interface {
	PublishPrincipalRepair(ctx context.Context, ev queue.PrincipalRepairEvent) error
}

// RoleService changes the role of user principals.  Promotion to admin moves
// the record from users to admins under the same id.
type RoleService struct {
	stores  *repository.Stores
	repairs RepairQueue
	log     logrus.FieldLogger
}

// NewRoleService builds the service.  repairs may be nil, in which case a
// failed cleanup is only logged.
func NewRoleService(stores *repository.Stores, repairs RepairQueue, log logrus.FieldLogger) *RoleService {
	return &RoleService{stores: stores, repairs: repairs, log: log}
}

// ChangeRole sets the role of user id.  The caller must already be an
// authenticated admin.
//
// Promotion is write admin, read it back, delete user.  The store offers no
// cross-collection transaction: when the delete fails the admin is kept, the
// response still succeeds and a repair event is queued so the leftover user
// record is removed later.
func (s *RoleService) ChangeRole(ctx context.Context, id string, role model.Role) (model.Summary, error) {
	if !role.Valid() {
		return model.Summary{}, ErrInvalidRole
	}
	u, err := s.stores.Users.GetByID(ctx, id)
	if err != nil {
		return model.Summary{}, err
	}
	if role == model.RoleUser {
		return u.Summary(), nil
	}

	admin, err := s.stores.Admins.GetByID(ctx, u.ID)
	switch {
	case err == nil:
		// an earlier promotion wrote the admin but left the user behind
		s.log.WithField("principal_id", u.ID).Warn("admin already exists, finishing promotion")
	case errors.Is(err, repository.ErrNotFound):
		if admin, err = s.createAdmin(ctx, u); err != nil {
			return model.Summary{}, err
		}
	default:
		return model.Summary{}, fmt.Errorf("look up admin: %w", err)
	}
	if err := s.stores.Users.Delete(ctx, u.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.WithError(err).WithField("principal_id", u.ID).Error("role escalation left a duplicate user record")
		s.enqueueRepair(ctx, admin, err)
	}
	return admin.Summary(), nil
}

func (s *RoleService) createAdmin(ctx context.Context, u *model.Principal) (*model.Principal, error) {
	admin := &model.Principal{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         model.RoleAdmin,
	}
	if err := s.stores.Admins.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	if _, err := s.stores.Admins.GetByID(ctx, admin.ID); err != nil {
		return nil, fmt.Errorf("verify admin write: %w", err)
	}
	return admin, nil
}

// enqueueRepair publishes outside the request deadline: the delete it
// follows up on usually failed because that deadline passed.
func (s *RoleService) enqueueRepair(ctx context.Context, p *model.Principal, cause error) {
	if s.repairs == nil {
		metrics.PrincipalRepairs.WithLabelValues("enqueue_failed").Inc()
		return
	}
	ev := queue.PrincipalRepairEvent{
		PrincipalID: p.ID,
		Email:       p.Email,
		Reason:      cause.Error(),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), repairPublishTimeout)
	defer cancel()
	if err := s.repairs.PublishPrincipalRepair(pubCtx, ev); err != nil {
		metrics.PrincipalRepairs.WithLabelValues("enqueue_failed").Inc()
		s.log.WithError(err).WithField("principal_id", p.ID).Error("could not enqueue principal repair")
		return
	}
	metrics.PrincipalRepairs.WithLabelValues("enqueued").Inc()
}

// Reconcile removes the user record left behind for id when the matching
// admin exists.  When no admin exists there is nothing to repair.
func (s *RoleService) Reconcile(ctx context.Context, id string) error {
	if _, err := s.stores.Admins.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		metrics.PrincipalRepairs.WithLabelValues("failed").Inc()
		return err
	}
	if err := s.stores.Users.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.PrincipalRepairs.WithLabelValues("failed").Inc()
		return err
	}
	metrics.PrincipalRepairs.WithLabelValues("repaired").Inc()
	return nil
}
