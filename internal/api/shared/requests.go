package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// Validatable lets a request type add checks that struct tags cannot express.
type Validatable interface {
	Validate() error
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing garbage.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body contains more than one JSON value")
	}
	return nil
}

// ValidateRequest runs struct-tag validation and, when implemented, the
// request's own Validate method.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
