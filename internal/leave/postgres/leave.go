package postgres

import (
	"context"
	stdErrors "errors"
	"time"

	errors "github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/frahmantamala/leave-management/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, lr *leave.LeaveRequest) error {
	model := leave.ToDataModel(lr)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewInternalError("failed to create leave request", err)
	}
	lr.ID = model.ID
	lr.CreatedAt = model.CreatedAt
	lr.UpdatedAt = model.UpdatedAt
	return nil
}

// List returns the requests in scope, newest first with id breaking ties.
func (r *LeaveRepository) List(ctx context.Context, scope identity.Scope) ([]*leave.LeaveRequest, error) {
	var models []leaveDatamodel.LeaveRequest

	q := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveRequest{})
	if !scope.All {
		q = q.Where("user_id = ?", scope.OwnerID)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, errors.NewInternalError("failed to list leave requests", err)
	}

	requests := make([]*leave.LeaveRequest, 0, len(models))
	for i := range models {
		requests = append(requests, leave.FromDataModel(&models[i]))
	}
	return requests, nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.LeaveRequest, error) {
	var model leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLeaveNotFound
		}
		return nil, errors.NewInternalError("failed to get leave request", err)
	}
	return leave.FromDataModel(&model), nil
}

// TransitionStatus is a compare-and-swap on the status column. When nothing
// matched, a follow-up read tells a missing row from one already decided.
func (r *LeaveRepository) TransitionStatus(ctx context.Context, id int64, from, to leave.Status, decidedBy int64, decidedAt time.Time) (*leave.LeaveRequest, error) {
	if !leave.CanTransition(from, to) {
		return nil, errors.ErrInvalidStatus
	}

	res := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveRequest{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"decided_by": decidedBy,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		})
	if res.Error != nil {
		return nil, errors.NewInternalError("failed to update leave request status", res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, errors.ErrLeaveNotPending
	}

	return r.GetByID(ctx, id)
}
