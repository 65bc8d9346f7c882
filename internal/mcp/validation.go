package mcp

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation rule identifiers shared by every tool.
const (
	RuleRequired         = "required"
	RuleInvalidType      = "invalid_type"
	RuleEnum             = "enum"
	RuleMin              = "min"
	RuleMax              = "max"
	RuleMinLength        = "min_length"
	RuleUnknownParameter = "unknown_parameter"
	RulePositiveDecimal  = "positive_decimal"
)

// Violation is one failed validation rule.
type Violation struct {
	Rule    string `json:"rule"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError is returned when tool arguments fail validation. It is
// always produced before any network call is made.
type ValidationError struct {
	Tool       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(msgs, "; "))
}

// Rules returns the identifiers of the violated rules, in order.
func (e *ValidationError) Rules() []string {
	rules := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		rules[i] = v.Rule
	}
	return rules
}

// Rule is a cross-field predicate over a bound parameter set. Holds reports
// whether the parameters satisfy it.
type Rule struct {
	ID      string
	Message string
	Holds   func() bool
}

// checkRules evaluates rules and returns one violation per rule that fails.
func checkRules(rules []Rule) []Violation {
	var out []Violation
	for _, r := range rules {
		if !r.Holds() {
			out = append(out, Violation{Rule: r.ID, Message: r.Message})
		}
	}
	return out
}

// bindArguments checks raw tool arguments against the declared parameters and
// returns them normalized: strings as string, integers as int64, booleans as
// bool, with defaults applied. A nil argument is treated as absent.
func bindArguments(ct CatalogTool, args map[string]any) (map[string]any, []Violation) {
	var violations []Violation
	out := make(map[string]any, len(ct.Params))

	if ct.Strict {
		known := make(map[string]bool, len(ct.Params))
		for _, p := range ct.Params {
			known[p.Name] = true
		}
		var unknown []string
		for k := range args {
			if !known[k] {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			violations = append(violations, Violation{
				Rule:    RuleUnknownParameter,
				Field:   k,
				Message: fmt.Sprintf("unknown parameter %q", k),
			})
		}
	}

	for _, p := range ct.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			switch {
			case p.Default != nil:
				out[p.Name] = p.Default
			case p.Required:
				violations = append(violations, Violation{
					Rule:    RuleRequired,
					Field:   p.Name,
					Message: fmt.Sprintf("%s is required", p.Name),
				})
			}
			continue
		}

		val, v := p.coerce(raw)
		if v != nil {
			violations = append(violations, *v)
			continue
		}
		if v := p.check(val); v != nil {
			violations = append(violations, *v)
			continue
		}
		out[p.Name] = val
	}

	return out, violations
}

// coerce converts a decoded JSON value to the Go type of the parameter.
func (p CatalogParam) coerce(raw any) (any, *Violation) {
	switch p.Type {
	case "integer":
		if n, ok := toInt64(raw); ok {
			return n, nil
		}
	case "boolean":
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	default:
		switch val := raw.(type) {
		case string:
			return val, nil
		case float64:
			// amounts are commonly sent as JSON numbers
			if p.Format == "decimal" {
				return strconv.FormatFloat(val, 'f', -1, 64), nil
			}
		}
	}
	return nil, &Violation{
		Rule:    RuleInvalidType,
		Field:   p.Name,
		Message: fmt.Sprintf("%s must be of type %s", p.Name, p.schemaType()),
	}
}

// check applies the per-field constraints to a coerced value.
func (p CatalogParam) check(val any) *Violation {
	switch v := val.(type) {
	case string:
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, v) {
			return &Violation{
				Rule:    RuleEnum,
				Field:   p.Name,
				Message: fmt.Sprintf("%s must be one of %s", p.Name, strings.Join(p.Enum, ", ")),
			}
		}
		if p.MinLength > 0 && len(v) < p.MinLength {
			return &Violation{
				Rule:    RuleMinLength,
				Field:   p.Name,
				Message: fmt.Sprintf("%s must be at least %d characters", p.Name, p.MinLength),
			}
		}
		if p.Format == "decimal" {
			d, err := decimal.NewFromString(v)
			if err != nil || !d.IsPositive() {
				return &Violation{
					Rule:    RulePositiveDecimal,
					Field:   p.Name,
					Message: fmt.Sprintf("%s must be a positive decimal number", p.Name),
				}
			}
		}
	case int64:
		if p.Min != nil && v < *p.Min {
			return &Violation{
				Rule:    RuleMin,
				Field:   p.Name,
				Message: fmt.Sprintf("%s must be at least %d", p.Name, *p.Min),
			}
		}
		if p.Max != nil && v > *p.Max {
			return &Violation{
				Rule:    RuleMax,
				Field:   p.Name,
				Message: fmt.Sprintf("%s must be at most %d", p.Name, *p.Max),
			}
		}
	}
	return nil
}

func toInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
