package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"gorm.io/gorm"
)

// DirectoryRepository reads the synced org chart. Implements
// directory.Directory and doubles as the notifier's contact source.
type DirectoryRepository struct{ db *gorm.DB }

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) ResolveApprovers(ctx context.Context, approverType template.ApproverType, department string) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&directory.OrgUser{}).
		Where("role = ? AND active = ?", string(approverType), true)
	if directory.DepartmentScoped(approverType) {
		q = q.Where("department = ?", department)
	}

	var ids []string
	if err := q.Order("user_id ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("resolve approvers: %w", err)
	}
	return ids, nil
}

// PhoneNumber returns the stored contact, or "" when the user has none.
func (r *DirectoryRepository) PhoneNumber(ctx context.Context, userID string) (string, error) {
	var u directory.OrgUser
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("phone lookup: %w", err)
	}
	return u.Phone, nil
}
