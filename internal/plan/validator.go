package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/plan.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation, located both as a JSON pointer
// and as a plan field such as "targets[0].world".
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/targets/0/world")
	Field   string // Plan field (e.g., "targets[0].world"), empty for the document root
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed
}

func (i ValidationIssue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("plan.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("plan.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw plan bytes in the given format against the plan schema.
// The error return is for decoding or schema compilation failures;
// validation issues are returned in the ValidationResult.
func Validate(data []byte, format Format) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	raw, err := decodeGeneric(data, format)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so the validator sees json.Number values
	// regardless of which decoder produced them.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// ValidateFile reads a plan file and validates it against the plan schema.
func ValidateFile(path string) (*ValidationResult, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data, format)
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)
	issues = dropShadowedUnknownKeys(issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree and turns each
// leaf into issues naming the plan field at fault. Missing and unknown keys
// are reported against the key itself rather than its parent table.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectValidationIssues(cause, issues)
		}
		return
	}

	loc := ve.InstanceLocation
	switch k := ve.ErrorKind.(type) {
	case nil, *kind.Group, *kind.Schema, *kind.Reference, *kind.AllOf:
		return
	case *kind.Required:
		for _, key := range k.Missing {
			*issues = append(*issues, newIssue(append(slices.Clone(loc), key), "required",
				printer.Sprintf("required key is missing")))
		}
	case *kind.AdditionalProperties:
		for _, key := range k.Properties {
			*issues = append(*issues, newIssue(append(slices.Clone(loc), key), "additionalProperties",
				printer.Sprintf("unknown key")))
		}
	case *kind.FalseSchema:
		// Raised by unevaluatedProperties for keys no option or target field claims.
		*issues = append(*issues, newIssue(loc, "unevaluatedProperties", printer.Sprintf("unknown key")))
	case *kind.Enum:
		*issues = append(*issues, newIssue(loc, "enum",
			printer.Sprintf("must be one of %s", enumValues(k.Want))))
	default:
		keyword := ""
		if kw := k.KeywordPath(); len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		*issues = append(*issues, newIssue(loc, keyword, k.LocalizedString(printer)))
	}
}

func newIssue(loc []string, keyword, msg string) ValidationIssue {
	path := ""
	if len(loc) > 0 {
		path = "/" + strings.Join(loc, "/")
	}
	return ValidationIssue{Path: path, Field: fieldName(loc), Message: msg, Keyword: keyword}
}

// fieldName renders an instance location the way plan authors write it:
// table keys joined by dots, list positions in brackets.
func fieldName(loc []string) string {
	var b strings.Builder
	for _, seg := range loc {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func enumValues(want []any) string {
	vals := make([]string, len(want))
	for i, v := range want {
		vals[i] = fmt.Sprint(v)
	}
	return strings.Join(vals, ", ")
}

// dropShadowedUnknownKeys removes "unknown key" issues in a table that has
// another issue at or below it. A failed option check leaves all of that
// table's option keys unevaluated, so they would otherwise be reported as
// unknown.
func dropShadowedUnknownKeys(issues []ValidationIssue) []ValidationIssue {
	shadowed := func(unknown ValidationIssue) bool {
		table := parentPath(unknown.Path) + "/"
		for _, other := range issues {
			if other.Keyword != "unevaluatedProperties" && strings.HasPrefix(other.Path+"/", table) {
				return true
			}
		}
		return false
	}

	var kept []ValidationIssue
	for _, issue := range issues {
		if issue.Keyword == "unevaluatedProperties" && shadowed(issue) {
			continue
		}
		kept = append(kept, issue)
	}
	return kept
}

func parentPath(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
