package flow

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/directory"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Evaluator resolves an ApprovalFlow against a document's form data into the
// effective ordered step list. Resolution is deterministic: the same flow,
// data and directory answers always produce the same sequence, so past
// routing decisions can be reproduced from their inputs.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

// Resolve walks the flow's steps in ascending order, drops steps whose
// conditions are not met, resolves the eligible approver set per step and
// fails with ErrNoEligibleApprover when a required human step resolves to
// nobody. Form data must already validate against the template schema.
func (e *Evaluator) Resolve(
	ctx context.Context,
	fl template.ApprovalFlow,
	formData map[string]any,
	department string,
	dir directory.Directory,
) ([]approval.EffectiveStep, error) {
	steps := fl.SortedSteps()
	out := make([]approval.EffectiveStep, 0, len(steps))

	for _, s := range steps {
		match, err := e.conditionsMet(s.Conditions, formData, department)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", s.Order, err)
		}
		if !match {
			continue
		}

		eff := approval.EffectiveStep{
			Order:        s.Order,
			ApproverType: s.ApproverType,
			AutoApproval: s.AutoApproval,
		}

		// Auto-approved steps need no human, so an empty directory answer
		// is not a failure for them.
		if !s.AutoApproval {
			users, err := dir.ResolveApprovers(ctx, s.ApproverType, department)
			if err != nil {
				return nil, fmt.Errorf("resolve approvers for step %d: %w", s.Order, err)
			}
			if len(users) == 0 {
				if s.Required {
					return nil, fmt.Errorf("step %d (%s): %w", s.Order, s.ApproverType, approval.ErrNoEligibleApprover)
				}
				continue
			}
			sort.Strings(users)
			eff.Approvers = users
		}

		out = append(out, eff)
	}
	return out, nil
}

func (e *Evaluator) conditionsMet(c *template.StepConditions, formData map[string]any, department string) (bool, error) {
	if c == nil {
		return true, nil
	}
	if c.AmountField != "" {
		amount, ok := template.NumericValue(formData[c.AmountField])
		if !ok {
			return false, nil
		}
		if c.MinAmount != nil && amount < *c.MinAmount {
			return false, nil
		}
		if c.MaxAmount != nil && amount > *c.MaxAmount {
			return false, nil
		}
	}
	if len(c.Departments) > 0 {
		found := false
		for _, d := range c.Departments {
			if d == department {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	if c.Expression != "" {
		return e.evaluate(c.Expression, formData, department)
	}
	return true, nil
}

// evaluate runs a boolean expression over the form data, caching compiled
// programs per expression string.
func (e *Evaluator) evaluate(expression string, formData map[string]any, department string) (bool, error) {
	e.mu.RLock()
	program, ok := e.cache[expression]
	e.mu.RUnlock()

	if !ok {
		e.mu.Lock()
		if program, ok = e.cache[expression]; !ok {
			var err error
			program, err = expr.Compile(expression, expr.AllowUndefinedVariables())
			if err != nil {
				e.mu.Unlock()
				return false, fmt.Errorf("compile condition %q: %w", expression, err)
			}
			e.cache[expression] = program
		}
		e.mu.Unlock()
	}

	env := make(map[string]any, len(formData)+1)
	for k, v := range formData {
		env[k] = v
	}
	env["department"] = department

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run condition %q: %w", expression, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean, got %T", expression, result)
	}
	return b, nil
}
