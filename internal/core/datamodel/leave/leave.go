package leave

import "time"

type LeaveRequest struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	UserName  string     `gorm:"column:user_name;size:100;not null"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time  `gorm:"column:end_date;type:date;not null"`
	Reason    string     `gorm:"column:reason;not null"`
	Status    string     `gorm:"column:status;size:20;not null;default:'pending'"`
	DecidedBy *int64     `gorm:"column:decided_by"`
	DecidedAt *time.Time `gorm:"column:decided_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
