package api

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
)

// FieldType is the expected JSON type of a schema field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeArray  FieldType = "array" // array of strings
)

// FieldSpec constrains one request field.
type FieldSpec struct {
	Required bool
	Type     FieldType
	Enum     []string
	MinItems int // arrays only
}

// Schema is a named-field validation table interpreted by one generic
// routine, instead of per-entity validation code.
type Schema map[string]FieldSpec

// FieldError reports a single violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks a decoded JSON object against the schema and returns every
// violation, ordered by field name. Fields outside the schema are ignored.
func (s Schema) Validate(body map[string]any) []FieldError {
	var errs []FieldError
	for _, name := range s.fieldNames() {
		spec := s[name]
		v, ok := body[name]
		if !ok || v == nil {
			if spec.Required {
				errs = append(errs, FieldError{Field: name, Message: "is required"})
			}
			continue
		}
		if msg := spec.check(v); msg != "" {
			errs = append(errs, FieldError{Field: name, Message: msg})
		}
	}
	return errs
}

// ValidateParams checks a query-parameter set. Parameters are always strings,
// so only presence and enum membership apply.
func (s Schema) ValidateParams(values url.Values) []FieldError {
	var errs []FieldError
	for _, name := range s.fieldNames() {
		spec := s[name]
		v := values.Get(name)
		if v == "" {
			if spec.Required {
				errs = append(errs, FieldError{Field: name, Message: "is required"})
			}
			continue
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, v) {
			errs = append(errs, FieldError{Field: name, Message: enumMessage(spec.Enum)})
		}
	}
	return errs
}

func (spec FieldSpec) check(v any) string {
	switch spec.Type {
	case TypeString:
		sv, ok := v.(string)
		if !ok {
			return "must be a string"
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, sv) {
			return enumMessage(spec.Enum)
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return "must be a number"
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return "must be an array of strings"
		}
		if len(arr) < spec.MinItems {
			return fmt.Sprintf("must contain at least %d item(s)", spec.MinItems)
		}
		for _, item := range arr {
			if _, ok := item.(string); !ok {
				return "must be an array of strings"
			}
		}
	}
	return ""
}

func (s Schema) fieldNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func enumMessage(enum []string) string {
	return "must be one of " + strings.Join(enum, ", ")
}

// productSchema validates product creation and update bodies.
var productSchema = Schema{
	"productName": {Required: true, Type: TypeString},
	"code":        {Required: true, Type: TypeString},
	"model":       {Type: TypeString},
	"productUrl":  {Type: TypeString},
	"price":       {Type: TypeNumber},
}

// orderCreationSchema validates order creation bodies.
var orderCreationSchema = Schema{
	"email":      {Required: true, Type: TypeString},
	"productIds": {Required: true, Type: TypeArray, MinItems: 1},
	"payment":    {Required: true, Type: TypeString, Enum: models.PaymentMethods()},
}

// orderDeletionParams validates order deletion query parameters. Both must be
// present; a deletion with only one of the two never reaches the store.
var orderDeletionParams = Schema{
	"email":   {Required: true, Type: TypeString},
	"orderId": {Required: true, Type: TypeString},
}
