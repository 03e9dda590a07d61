package directorymock

import (
	"context"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
)

var _ directory.Directory = (*Dir)(nil)

// Dir is a function-backed mock that satisfies directory.Directory.
type Dir struct {
	ResolveApproversFn func(ctx context.Context, approverType template.ApproverType, department string) ([]string, error)
}

func (m *Dir) ResolveApprovers(ctx context.Context, approverType template.ApproverType, department string) ([]string, error) {
	if m.ResolveApproversFn != nil {
		return m.ResolveApproversFn(ctx, approverType, department)
	}
	return nil, nil
}

// Static builds a Dir answering from a fixed role → user ids table,
// ignoring department. Handy for flow resolution tests.
func Static(byRole map[template.ApproverType][]string) *Dir {
	return &Dir{
		ResolveApproversFn: func(_ context.Context, t template.ApproverType, _ string) ([]string, error) {
			return byRole[t], nil
		},
	}
}
