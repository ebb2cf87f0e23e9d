package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/profile.schema.json
var schemaBytes []byte

var printer = message.NewPrinter(language.English)

// ValidationIssue is one problem found in a profile, located by its JSON
// pointer into the document.
type ValidationIssue struct {
	Path    string
	Message string
	Keyword string
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

var profileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema JSON: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("profile.schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	s, err := c.Compile("profile.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return s, nil
})

// Validate checks profile YAML against the embedded schema and returns the
// schema violations, or nil when there are none. The error is reserved for
// unreadable YAML and schema compilation failures.
func Validate(data []byte) ([]ValidationIssue, error) {
	schema, err := profileSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	// The validator wants JSON values, json.Number included.
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
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	if issues := leafIssues(ve, map[ValidationIssue]bool{}); len(issues) > 0 {
		return issues, nil
	}
	return []ValidationIssue{{Message: ve.Error()}}, nil
}

// leafIssues flattens the cause tree so oneOf branches report the property
// that failed. Wrapper keywords carry no message of their own and are dropped.
func leafIssues(ve *jsonschema.ValidationError, seen map[ValidationIssue]bool) []ValidationIssue {
	var out []ValidationIssue
	for _, cause := range ve.Causes {
		out = append(out, leafIssues(cause, seen)...)
	}
	if len(ve.Causes) > 0 || ve.ErrorKind == nil {
		return out
	}

	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 || kw[len(kw)-1] == "allOf" || kw[len(kw)-1] == "$ref" {
		return out
	}
	issue := ValidationIssue{
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: kw[len(kw)-1],
	}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	if !seen[issue] {
		seen[issue] = true
		out = append(out, issue)
	}
	return out
}
