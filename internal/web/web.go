// Package web holds the request decoding, query parsing and response helpers
// shared by every feature handler.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// ErrorBody is the JSON shape of every error response. Message is a string,
// or a list of strings for validation failures.
type ErrorBody struct {
	Status  int `json:"status"`
	Message any `json:"message"`
}

// MessageBody is returned by deletes.
type MessageBody struct {
	Message string `json:"message"`
}

// TokenField is embedded in request bodies so clients may carry the auth
// token as "_token" without tripping the unknown-field check.
type TokenField struct {
	Token string `json:"_token,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// validate the value inside a patch field; absent and null skip omitempty rules
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if n, ok := f.Interface().(sqlbuilder.Nullable[string]); ok && n.Value != nil {
			return *n.Value
		}
		return nil
	}, sqlbuilder.Nullable[string]{})
	return v
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err. NotFound errors use notFoundStatus so GET routes
// can answer 400 while PATCH and DELETE answer 404. Errors that are not
// *apperror.AppError are logged and hidden behind a 500.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, err error, notFoundStatus int) {
	ae, ok := apperror.As(err)
	if !ok {
		logger.Errorw("request failed", "err", err)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Status: http.StatusInternalServerError, Message: "Internal Server Error"})
		return
	}
	status := ae.StatusCode()
	if ae.Type == apperror.NotFoundError {
		status = notFoundStatus
	}
	if status >= http.StatusInternalServerError {
		logger.Errorw("request failed", "err", err)
	} else {
		logger.Debugw("request rejected", "status", status, "err", err)
	}
	var msg any = ae.Message
	if len(ae.Details) > 0 {
		msg = ae.Details
	}
	WriteJSON(w, status, ErrorBody{Status: status, Message: msg})
}

// Decode reads a JSON body into dst and validates it. Unknown fields are
// rejected, which keeps key columns out of patches.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewValidation("invalid payload", "request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.NewValidation("invalid payload", fmt.Sprintf("%s is not of a type(s) %s", typeErr.Field, jsonKind(typeErr.Type)))
		}
		return apperror.NewValidation("invalid payload", err.Error())
	}
	return Validate(dst)
}

// Validate runs the struct's validate tags and lists every violation.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation("invalid payload", err.Error())
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperror.NewValidation("invalid payload", details...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be an email address"
	case "url":
		return fe.Field() + " must be a url"
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	default:
		return t.Kind().String()
	}
}

// QueryString returns nil when key is absent or empty.
func QueryString(q url.Values, key string) *string {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// QueryInt parses key as an integer, returning def when it is absent.
func QueryInt(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperror.NewValidation("invalid query", key+" must be an integer")
	}
	return n, nil
}

// QueryFloat parses key as a number, returning def when it is absent.
func QueryFloat(q url.Values, key string, def float64) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperror.NewValidation("invalid query", key+" must be a number")
	}
	return f, nil
}

// PathInt64 parses a path value such as a job id.
func PathInt64(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apperror.NewValidation("invalid path", name+" must be an integer")
	}
	return n, nil
}
