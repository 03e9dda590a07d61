package directory

import (
	"errors"
	"time"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("org user not found")

// OrgUser is one row of the synced organizational chart. The portal does
// not own this data; a nightly sync writes it and this service only reads.
type OrgUser struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"type:char(32);uniqueIndex;not null"`
	Name       string `gorm:"type:varchar(100);not null"`
	Department string `gorm:"type:varchar(100);index;not null"`
	Role       string `gorm:"type:varchar(50);index;not null"`
	Phone      string `gorm:"type:varchar(20)"`
	Active     bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (OrgUser) TableName() string { return "org_users" }

// DepartmentScoped reports whether the role is resolved within the
// applicant's department. The remaining roles are company-wide seats.
func DepartmentScoped(t template.ApproverType) bool {
	return t == template.ApproverDirectManager || t == template.ApproverDepartmentHead
}
