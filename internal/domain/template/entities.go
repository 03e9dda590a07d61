package template

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("template not found")
	ErrInvalidFlow   = errors.New("invalid approval flow")
	ErrInvalidSchema = errors.New("invalid field schema")
	ErrFormData      = errors.New("form data does not match template schema")
)

// ApproverType names the organizational role that must act on a step.
// Concrete user ids are resolved through the approver directory.
type ApproverType string

const (
	ApproverDirectManager     ApproverType = "direct_manager"
	ApproverDepartmentHead    ApproverType = "department_head"
	ApproverHRManager         ApproverType = "hr_manager"
	ApproverGeneralManager    ApproverType = "general_manager"
	ApproverAccountingManager ApproverType = "accounting_manager"
	ApproverPurchaseManager   ApproverType = "purchase_manager"
	ApproverSalesManager      ApproverType = "sales_manager"
)

var approverTypes = map[ApproverType]bool{
	ApproverDirectManager:     true,
	ApproverDepartmentHead:    true,
	ApproverHRManager:         true,
	ApproverGeneralManager:    true,
	ApproverAccountingManager: true,
	ApproverPurchaseManager:   true,
	ApproverSalesManager:      true,
}

func (t ApproverType) Valid() bool { return approverTypes[t] }

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldFile     FieldType = "file"
)

var fieldTypes = map[FieldType]bool{
	FieldText: true, FieldTextarea: true, FieldNumber: true,
	FieldDate: true, FieldSelect: true, FieldFile: true,
}

// Field is one entry of a template's ordered field schema.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
}

// StepConditions gate whether a step applies to a given document.
// AmountField names a numeric form field checked against Min/MaxAmount,
// Departments is an allow-list matched against the applicant's department,
// and Expression is an optional boolean expression over the form data.
type StepConditions struct {
	AmountField string   `json:"amount_field,omitempty"`
	MinAmount   *float64 `json:"min_amount,omitempty"`
	MaxAmount   *float64 `json:"max_amount,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Expression  string   `json:"expression,omitempty"`
}

type ApprovalStep struct {
	Order        int             `json:"order"`
	ApproverType ApproverType    `json:"approver_type"`
	Required     bool            `json:"required"`
	AutoApproval bool            `json:"auto_approval"`
	Conditions   *StepConditions `json:"conditions,omitempty"`
}

// ApprovalFlow is the template-level routing policy. Documents copy it at
// submission time; the copy, not the template, drives in-flight routing.
type ApprovalFlow struct {
	Steps            []ApprovalStep `json:"steps"`
	ParallelApproval bool           `json:"parallel_approval"`
	EscalationDays   *int           `json:"escalation_days,omitempty"`
}

// SortedSteps returns the steps ordered by ascending Order without
// mutating the flow.
func (f ApprovalFlow) SortedSteps() []ApprovalStep {
	out := make([]ApprovalStep, len(f.Steps))
	copy(out, f.Steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Validate rejects malformed flows at template-save time so the evaluator
// may assume step orders are unique and positive.
func (f ApprovalFlow) Validate(fields []Field) error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("%w: flow has no steps", ErrInvalidFlow)
	}
	if f.EscalationDays != nil && *f.EscalationDays <= 0 {
		return fmt.Errorf("%w: escalation_days must be positive", ErrInvalidFlow)
	}
	seen := make(map[int]bool, len(f.Steps))
	for _, s := range f.Steps {
		if s.Order <= 0 {
			return fmt.Errorf("%w: step order %d must be positive", ErrInvalidFlow, s.Order)
		}
		if seen[s.Order] {
			return fmt.Errorf("%w: duplicate step order %d", ErrInvalidFlow, s.Order)
		}
		seen[s.Order] = true
		if !s.ApproverType.Valid() {
			return fmt.Errorf("%w: unknown approver type %q", ErrInvalidFlow, s.ApproverType)
		}
		if c := s.Conditions; c != nil {
			if c.AmountField != "" {
				fd, ok := fieldByName(fields, c.AmountField)
				if !ok {
					return fmt.Errorf("%w: amount field %q not in schema", ErrInvalidFlow, c.AmountField)
				}
				if fd.Type != FieldNumber {
					return fmt.Errorf("%w: amount field %q is not numeric", ErrInvalidFlow, c.AmountField)
				}
			}
			if c.MinAmount != nil && c.MaxAmount != nil && *c.MinAmount > *c.MaxAmount {
				return fmt.Errorf("%w: step %d min_amount exceeds max_amount", ErrInvalidFlow, s.Order)
			}
			if (c.MinAmount != nil || c.MaxAmount != nil) && c.AmountField == "" {
				return fmt.Errorf("%w: step %d has amount bounds but no amount_field", ErrInvalidFlow, s.Order)
			}
		}
	}
	return nil
}

// ValidateFields rejects malformed field schemas at template-save time.
func ValidateFields(fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: schema has no fields", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(fields))
	for _, fd := range fields {
		if fd.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidSchema)
		}
		if seen[fd.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, fd.Name)
		}
		seen[fd.Name] = true
		if !fieldTypes[fd.Type] {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidSchema, fd.Name, fd.Type)
		}
		if fd.Type == FieldSelect && len(fd.Options) == 0 {
			return fmt.Errorf("%w: select field %q has no options", ErrInvalidSchema, fd.Name)
		}
		if fd.Min != nil && fd.Max != nil && *fd.Min > *fd.Max {
			return fmt.Errorf("%w: field %q min exceeds max", ErrInvalidSchema, fd.Name)
		}
	}
	return nil
}

// ValidateFormData checks submitted values against the field schema.
// Schema validation is a precondition of flow evaluation, not part of it.
func ValidateFormData(fields []Field, data map[string]any) error {
	for _, fd := range fields {
		v, ok := data[fd.Name]
		if !ok || v == nil || v == "" {
			if fd.Required {
				return fmt.Errorf("%w: missing required field %q", ErrFormData, fd.Name)
			}
			continue
		}
		switch fd.Type {
		case FieldNumber:
			n, ok := NumericValue(v)
			if !ok {
				return fmt.Errorf("%w: field %q must be numeric", ErrFormData, fd.Name)
			}
			if fd.Min != nil && n < *fd.Min {
				return fmt.Errorf("%w: field %q below minimum %v", ErrFormData, fd.Name, *fd.Min)
			}
			if fd.Max != nil && n > *fd.Max {
				return fmt.Errorf("%w: field %q above maximum %v", ErrFormData, fd.Name, *fd.Max)
			}
		case FieldDate:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: field %q must be a date string", ErrFormData, fd.Name)
			}
			if _, err := time.Parse("2006-01-02", s); err != nil {
				return fmt.Errorf("%w: field %q must be YYYY-MM-DD", ErrFormData, fd.Name)
			}
		case FieldSelect:
			s, ok := v.(string)
			if !ok || !contains(fd.Options, s) {
				return fmt.Errorf("%w: field %q must be one of its options", ErrFormData, fd.Name)
			}
		}
	}
	for name := range data {
		if _, ok := fieldByName(fields, name); !ok {
			return fmt.Errorf("%w: unknown field %q", ErrFormData, name)
		}
	}
	return nil
}

// NumericValue extracts a float from a decoded JSON form value.
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func fieldByName(fields []Field, name string) (Field, bool) {
	for _, fd := range fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}

// Table: form_templates
type FormTemplate struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	TemplateID          string                           `gorm:"column:template_id;type:char(32);not null;uniqueIndex:ux_templates_template_id_active" json:"template_id"`
	Name                string                           `gorm:"column:name;size:100;not null" json:"name"`
	Category            string                           `gorm:"column:category;size:50;index" json:"category"`
	Description         string                           `gorm:"column:description;type:text" json:"description"`
	Fields              datatypes.JSONSlice[Field]       `gorm:"column:fields;type:json;not null" json:"fields"`
	Flow                datatypes.JSONType[ApprovalFlow] `gorm:"column:approval_flow;type:json;not null" json:"approval_flow"`
	RequiredAttachments datatypes.JSONSlice[string]      `gorm:"column:required_attachments;type:json" json:"required_attachments"`
	Active              bool                             `gorm:"column:active;default:true" json:"active"`
	SortOrder           int                              `gorm:"column:sort_order;default:0" json:"sort_order"`
	CreatedAt           time.Time                        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time                        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt                   `gorm:"column:deleted_at;index" json:"-"`
}

func (FormTemplate) TableName() string { return "form_templates" }
