package directory

import (
	"context"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
)

// Directory answers "who holds role R for department D". The real
// implementation sits on the organizational chart, outside this core.
type Directory interface {
	ResolveApprovers(ctx context.Context, approverType template.ApproverType, department string) ([]string, error)
}
