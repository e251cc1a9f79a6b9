// Package validation checks product requests before any storage access.
// Every check is a pure function of its input; the Validator only carries the
// validator and translator set-up built once by New.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"productsapi/internal/models"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

// Code classifies a violation.
type Code string

const (
	CodeInvalidID    Code = "invalid_id"
	CodeMissingField Code = "missing_field"
	CodeInvalidValue Code = "invalid_value"
)

const (
	LocationParams = "params"
	LocationBody   = "body"
)

const (
	msgInvalidID           = "ID no valido."
	msgInvalidValue        = "Valor no valido"
	msgInvalidAvailability = "Valor para disponibilidad no valido"
	msgInvalidBody         = "Cuerpo de la petición no valido"
	msgRequired            = "El campo {0} no puede ir vacio"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field    string      `json:"field,omitempty"`
	Location string      `json:"location"`
	Value    interface{} `json:"value,omitempty"`
	Code     Code        `json:"code"`
	Message  string      `json:"msg"`
}

// Mode selects the body rules: availability is optional on create and required on update.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

type productBody struct {
	Name         string   `json:"name" label:"nombre" validate:"required,max=100"`
	Price        *float64 `json:"price" label:"precio" validate:"required,gt=0"`
	Availability *bool    `json:"availability" label:"disponibilidad" validate:"required_if=Mode update"`
	Mode         Mode     `json:"-" validate:"-"`
}

var fieldOrder = map[string]int{
	"id":           0,
	"name":         1,
	"price":        2,
	"availability": 3,
}

// Every price and availability failure is reported as an invalid value,
// including a missing one.
var fieldCodes = map[string]Code{
	"price":        CodeInvalidValue,
	"availability": CodeInvalidValue,
}

// Validator evaluates the request rules of the product API.
type Validator struct {
	validate  *validator.Validate
	trans     ut.Translator
	jsonNames map[string]string
}

// New builds a Validator with Spanish messages.
func New() (*Validator, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	locale := es.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}
	for _, tag := range []string{"required", "required_if"} {
		tag := tag
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, msgRequired, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return t
			})
		if err != nil {
			return nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}

	jsonNames := make(map[string]string)
	bodyType := reflect.TypeOf(productBody{})
	for i := 0; i < bodyType.NumField(); i++ {
		f := bodyType.Field(i)
		jsonNames[f.Name] = strings.Split(f.Tag.Get("json"), ",")[0]
	}

	return &Validator{
		validate:  validate,
		trans:     trans,
		jsonNames: jsonNames,
	}, nil
}

// ProductID parses a path identifier: a base-10 integer with an optional sign.
// Integers beyond the int64 range resolve to 0, which no product has.
func (v *Validator) ProductID(raw string) (int64, []Violation) {
	if err := v.validate.Var(raw, "required,numeric"); err == nil {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, nil
		}
	}
	return 0, []Violation{{
		Field:    "id",
		Location: LocationParams,
		Value:    raw,
		Code:     CodeInvalidID,
		Message:  msgInvalidID,
	}}
}

// ProductBody checks a create or update payload and returns the accepted input.
// All violations are collected; on any violation the returned input is empty.
func (v *Validator) ProductBody(body []byte, mode Mode) (models.ProductInput, []Violation) {
	fields, ok := decodeObject(body)
	if !ok {
		return models.ProductInput{}, []Violation{{
			Location: LocationBody,
			Code:     CodeInvalidValue,
			Message:  msgInvalidBody,
		}}
	}

	req := productBody{Mode: mode}
	var violations []Violation
	typeErrors := make(map[string]bool)
	invalid := func(field, msg string) {
		typeErrors[field] = true
		violations = append(violations, Violation{
			Field:    field,
			Location: LocationBody,
			Value:    fields[field],
			Code:     CodeInvalidValue,
			Message:  msg,
		})
	}

	if raw := fields["name"]; raw != nil {
		if name, isString := raw.(string); isString {
			req.Name = name
		} else {
			invalid("name", msgInvalidValue)
		}
	}
	if raw := fields["price"]; raw != nil {
		if price, isNumber := parseNumber(raw); isNumber {
			req.Price = &price
		} else {
			invalid("price", msgInvalidValue)
		}
	}
	if raw := fields["availability"]; raw != nil {
		if availability, isBool := raw.(bool); isBool {
			req.Availability = &availability
		} else {
			invalid("availability", msgInvalidAvailability)
		}
	}

	if err := v.validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return models.ProductInput{}, []Violation{{
				Location: LocationBody,
				Code:     CodeInvalidValue,
				Message:  err.Error(),
			}}
		}
		for _, fe := range fieldErrors {
			field := v.jsonNames[fe.StructField()]
			if typeErrors[field] {
				continue
			}
			violations = append(violations, Violation{
				Field:    field,
				Location: LocationBody,
				Value:    fields[field],
				Code:     codeFor(field, fe.Tag()),
				Message:  fe.Translate(v.trans),
			})
		}
	}

	if len(violations) > 0 {
		SortViolations(violations)
		return models.ProductInput{}, violations
	}
	return models.ProductInput{
		Name:         req.Name,
		Price:        *req.Price,
		Availability: req.Availability,
	}, nil
}

// SortViolations orders violations by field: id, name, price, availability.
func SortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return fieldOrder[violations[i].Field] < fieldOrder[violations[j].Field]
	})
}

func codeFor(field, tag string) Code {
	if code, ok := fieldCodes[field]; ok {
		return code
	}
	if tag == "required" || tag == "required_if" {
		return CodeMissingField
	}
	return CodeInvalidValue
}

// decodeObject accepts an empty body or a single JSON object.
func decodeObject(body []byte) (map[string]interface{}, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]interface{}{}, true
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return fields, true
}

// parseNumber accepts JSON numbers and numeric strings.
func parseNumber(raw interface{}) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := raw.(type) {
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
