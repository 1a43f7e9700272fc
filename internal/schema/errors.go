package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaViolation 为所有校验失败的哨兵错误，可用 errors.Is 判断。
var ErrSchemaViolation = errors.New("schema violation")

// 常用约束文本。
const (
	ConstraintRequired = "required"
	ConstraintURL      = "valid URL"
)

// Violation 为单个字段的违规描述。
type Violation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Got        string `json:"got,omitempty"`
}

func (v Violation) String() string {
	if v.Got != "" {
		return fmt.Sprintf("%s: %s (got %s)", v.Field, v.Constraint, v.Got)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Constraint)
}

// ValidationError 汇总一条记录的全部违规。
type ValidationError struct {
	Kind       Kind
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s record: %s", ErrSchemaViolation, e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrSchemaViolation }

// First 返回第一条违规。
func (e *ValidationError) First() Violation {
	if len(e.Violations) == 0 {
		return Violation{}
	}
	return e.Violations[0]
}

// Has 判断是否存在指定字段与约束的违规；constraint 为空时只匹配字段。
func (e *ValidationError) Has(field, constraint string) bool {
	for _, v := range e.Violations {
		if v.Field == field && (constraint == "" || v.Constraint == constraint) {
			return true
		}
	}
	return false
}
