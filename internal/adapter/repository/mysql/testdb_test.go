package mysql

import (
	"testing"

	approvalDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	directoryDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	templateDomain "github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema. The
// domain models carry no engine-specific column types, so they migrate
// cleanly on sqlite.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&templateDomain.FormTemplate{},
		&approvalDomain.ApprovalDocument{},
		&approvalDomain.History{},
		&directoryDomain.OrgUser{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
