package filterexpr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
)

// ValueKind describes the kind of value a filter variable holds.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
	KindBool      ValueKind = "bool"
)

// Fields declares the variables an expression may reference.
type Fields map[string]ValueKind

// Predicate is a compiled boolean filter. A nil Predicate matches everything.
type Predicate struct {
	source  string
	fields  Fields
	program cel.Program
}

// Compile parses and type-checks expr against fields. An empty expression
// yields a nil Predicate.
func Compile(expr string, fields Fields) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &Predicate{source: expr, fields: fields, program: program}, nil
}

// Match evaluates the predicate. vars must provide every declared field.
func (p *Predicate) Match(vars map[string]any) (bool, error) {
	if p == nil {
		return true, nil
	}
	for name := range p.fields {
		if _, ok := vars[name]; !ok {
			return false, fmt.Errorf("missing value for field %q", name)
		}
	}
	out, _, err := p.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return matched, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

func buildEnv(fields Fields) (*cel.Env, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for _, name := range names {
		celType, err := celTypeForKind(fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	case KindBool:
		return cel.BoolType, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %q", kind)
	}
}
