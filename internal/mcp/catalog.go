package mcp

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/upbit-mcp/internal/common"
	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// allowedMethods is the whitelist of HTTP methods for catalog tools.
var allowedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodDelete: true,
}

// toolNamePattern is the uppercase-with-underscores tool naming convention.
var toolNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)*$`)

// CatalogTool describes one exchange endpoint exposed as a tool.
type CatalogTool struct {
	Name        string
	Description string
	Method      string
	Path        string // relative to the API base path, e.g. "/orders"
	Params      []CatalogParam

	// Private endpoints pass the authorization guard and carry a signed token.
	Private bool
	// Strict rejects arguments that are not declared in Params.
	Strict bool
	// Unwrap returns the first element of an array response.
	Unwrap bool
	// Shape is the expected structure of the response payload.
	Shape upbit.Shape

	newParams func() ToolParams
}

// CatalogParam describes one argument of a catalog tool.
type CatalogParam struct {
	Name        string
	Type        string // string, integer, boolean
	Description string
	Required    bool
	Enum        []string
	Default     any
	Min         *int64
	Max         *int64
	MinLength   int
	Format      string // "decimal" for positive amounts
}

func (p CatalogParam) schemaType() string {
	switch p.Type {
	case "integer", "boolean":
		return p.Type
	}
	return "string"
}

// ValidateCatalogTool validates a single catalog tool entry.
func ValidateCatalogTool(ct CatalogTool) error {
	if ct.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if !toolNamePattern.MatchString(ct.Name) {
		return fmt.Errorf("tool %q must be uppercase with underscores", ct.Name)
	}
	if ct.Method == "" {
		return fmt.Errorf("tool %q has empty method", ct.Name)
	}
	if !allowedMethods[strings.ToUpper(ct.Method)] {
		return fmt.Errorf("tool %q has unsupported method %q", ct.Name, ct.Method)
	}
	if ct.Path == "" {
		return fmt.Errorf("tool %q has empty path", ct.Name)
	}
	if !strings.HasPrefix(ct.Path, "/") {
		return fmt.Errorf("tool %q has invalid path %q (must start with /)", ct.Name, ct.Path)
	}
	if strings.Contains(ct.Path, "..") || strings.ContainsAny(ct.Path, "?#") {
		return fmt.Errorf("tool %q has invalid path %q", ct.Name, ct.Path)
	}
	if ct.newParams == nil {
		return fmt.Errorf("tool %q has no parameter binding", ct.Name)
	}
	seen := make(map[string]bool, len(ct.Params))
	for _, p := range ct.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q has a parameter with empty name", ct.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %q declares parameter %q twice", ct.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ValidateCatalog filters and validates catalog entries, logging warnings for invalid or duplicate tools.
func ValidateCatalog(catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	seen := make(map[string]bool, len(catalog))
	valid := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		if err := ValidateCatalogTool(ct); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping invalid catalog tool")
			continue
		}
		if seen[ct.Name] {
			logger.Warn().Str("name", ct.Name).Msg("skipping duplicate catalog tool")
			continue
		}
		seen[ct.Name] = true
		valid = append(valid, ct)
	}
	return valid
}

// BuildMCPTool converts a CatalogTool into an mcp.Tool with the appropriate schema.
func BuildMCPTool(ct CatalogTool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.Description)}
	if ct.Method == http.MethodGet {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(true))
	} else {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(false), mcp.WithDestructiveHintAnnotation(true))
	}
	for _, p := range ct.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(ct.Name, opts...)
}

// buildParamOption maps a CatalogParam to the appropriate mcp-go tool option.
func buildParamOption(p CatalogParam) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "integer":
		if p.Min != nil {
			opts = append(opts, mcp.Min(float64(*p.Min)))
		}
		if p.Max != nil {
			opts = append(opts, mcp.Max(float64(*p.Max)))
		}
		if d, ok := p.Default.(int64); ok {
			opts = append(opts, mcp.DefaultNumber(float64(d)))
		}
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	default:
		if len(p.Enum) > 0 {
			opts = append(opts, mcp.Enum(p.Enum...))
		}
		if p.MinLength > 0 {
			opts = append(opts, mcp.MinLength(p.MinLength))
		}
		if d, ok := p.Default.(string); ok {
			opts = append(opts, mcp.DefaultString(d))
		}
		return mcp.WithString(p.Name, opts...)
	}
}

// bind validates raw arguments and returns the typed parameters. Cross-field
// rules are only evaluated once every field is individually valid.
func (ct CatalogTool) bind(args map[string]any) (ToolParams, error) {
	bound, violations := bindArguments(ct, args)
	if len(violations) > 0 {
		return nil, &ValidationError{Tool: ct.Name, Violations: violations}
	}

	params := ct.newParams()
	if err := decodeParams(bound, params); err != nil {
		return nil, &ValidationError{
			Tool:       ct.Name,
			Violations: []Violation{{Rule: RuleInvalidType, Message: err.Error()}},
		}
	}
	if violations := checkRules(params.Rules()); len(violations) > 0 {
		return nil, &ValidationError{Tool: ct.Name, Violations: violations}
	}
	return params, nil
}
