package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/store"
)

const maxBodyBytes = 1 << 20

// newValidator reports violations under JSON field names and validates
// decimals by their numeric value
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// Fields not declared on dst, such as userId, are dropped.
func (r *Router) decodeAndValidate(req *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return store.NewValidationError(typeErr.Field, "has the wrong type")
		}
		var fieldErr *fieldDecodeError
		if errors.As(err, &fieldErr) {
			return store.NewValidationError(fieldErr.field, fieldErr.msg)
		}
		if errors.Is(err, io.EOF) {
			return store.NewValidationError("body", "request body is required")
		}
		return store.NewValidationError("body", "malformed JSON")
	}

	if err := r.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := &store.ValidationError{}
		for _, fe := range verrs {
			out.Add(fieldPath(fe), validationMessage(fe))
		}
		return out
	}
	return nil
}

// fieldPath drops the top-level struct name from the namespace: createInvoiceRequest.items[0].rate -> items[0].rate
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "lte", "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a URL"
	case "uri":
		return "must be a URI"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// Date accepts "2006-01-02" or an RFC 3339 timestamp and keeps the calendar day
type Date struct {
	time.Time
}

type fieldDecodeError struct {
	field string
	msg   string
}

func (e *fieldDecodeError) Error() string { return e.field + ": " + e.msg }

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &fieldDecodeError{field: "dueDate", msg: "must be a date string"}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return &fieldDecodeError{field: "dueDate", msg: fmt.Sprintf("%q is not a valid date", s)}
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
