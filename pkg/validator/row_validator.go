package validator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// thousandsGrouped matches numbers written with comma thousands separators,
// such as "1,234.50". Any other comma is a malformed number.
var thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// FieldType is the coercion rule applied to a raw cell.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeText    FieldType = "text"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDecimal FieldType = "decimal"
	FieldTypeBoolean FieldType = "boolean"
)

// FieldSpec describes one column of an importable resource.
type FieldSpec struct {
	Name      string
	Type      FieldType
	Required  bool
	Default   any
	MaxLength int
}

// Schema is the ordered field set of a resource. Order drives template and
// export column order.
type Schema []FieldSpec

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldError is one message attached to one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowValidationError lists every field that failed validation for a row.
type RowValidationError struct {
	Errors []FieldError
}

func (e *RowValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Fields groups the messages by field name.
func (e *RowValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Record is the typed projection of a validated row. Absent optional fields
// without a default are not present in the map.
type Record map[string]any

// String returns the string value of name or "".
func (r Record) String(name string) string {
	v, _ := r[name].(string)
	return v
}

// StringPtr returns nil when name is absent.
func (r Record) StringPtr(name string) *string {
	v, ok := r[name].(string)
	if !ok {
		return nil
	}
	return &v
}

// IntPtr returns nil when name is absent.
func (r Record) IntPtr(name string) *int {
	v, ok := r[name].(int)
	if !ok {
		return nil
	}
	return &v
}

// FloatPtr returns nil when name is absent.
func (r Record) FloatPtr(name string) *float64 {
	v, ok := r[name].(float64)
	if !ok {
		return nil
	}
	return &v
}

// Bool returns the boolean value of name or fallback when absent.
func (r Record) Bool(name string, fallback bool) bool {
	v, ok := r[name].(bool)
	if !ok {
		return fallback
	}
	return v
}

// RowValidator checks raw rows against a schema.
type RowValidator struct {
	schema Schema
}

// NewRowValidator creates a validator for schema.
func NewRowValidator(schema Schema) *RowValidator {
	return &RowValidator{schema: schema}
}

// Schema returns the schema the validator enforces.
func (v *RowValidator) Schema() Schema {
	return v.schema
}

// Validate coerces raw cell values into a Record. Blank values count as
// absent. Columns not in the schema are ignored. All failing fields are
// reported together.
func (v *RowValidator) Validate(values map[string]string) (Record, error) {
	record := make(Record, len(v.schema))
	var errs []FieldError

	for _, field := range v.schema {
		raw := strings.TrimSpace(values[field.Name])
		if raw == "" {
			if field.Required {
				errs = append(errs, FieldError{Field: field.Name, Message: "This field is required."})
				continue
			}
			if field.Default != nil {
				record[field.Name] = field.Default
			}
			continue
		}

		coerced, err := Coerce(field.Type, raw)
		if err != nil {
			errs = append(errs, FieldError{Field: field.Name, Message: err.Error()})
			continue
		}
		if s, ok := coerced.(string); ok && field.MaxLength > 0 && utf8.RuneCountInString(s) > field.MaxLength {
			errs = append(errs, FieldError{
				Field:   field.Name,
				Message: fmt.Sprintf("Ensure this field has no more than %d characters.", field.MaxLength),
			})
			continue
		}
		record[field.Name] = coerced
	}

	if len(errs) > 0 {
		return nil, &RowValidationError{Errors: errs}
	}
	return record, nil
}

// Coerce converts a non-blank raw cell into the Go value for fieldType.
func Coerce(fieldType FieldType, raw string) (any, error) {
	switch fieldType {
	case FieldTypeString, FieldTypeText, "":
		return raw, nil
	case FieldTypeInteger:
		if i, err := strconv.Atoi(raw); err == nil {
			return i, nil
		}
		// Spreadsheets hand integers back as "2020.0" or "2.02E+03".
		if f, err := strconv.ParseFloat(raw, 64); err == nil && math.Mod(f, 1) == 0 && math.Abs(f) <= math.MaxInt32 {
			return int(f), nil
		}
		return nil, fmt.Errorf("A valid integer is required, got %q.", raw)
	case FieldTypeDecimal:
		value := raw
		if strings.Contains(value, ",") {
			if !thousandsGrouped.MatchString(value) {
				return nil, fmt.Errorf("A valid number is required, got %q.", raw)
			}
			value = strings.ReplaceAll(value, ",", "")
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("A valid number is required, got %q.", raw)
		}
		return f, nil
	case FieldTypeBoolean:
		value := strings.ToLower(raw)
		switch value {
		case "1", "yes", "y", "ya":
			return true, nil
		case "0", "no", "n", "tidak":
			return false, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("Must be a valid boolean, got %q.", raw)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown field type %s", fieldType)
	}
}
