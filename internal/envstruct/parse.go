// Package envstruct fills tagged struct fields from environment variables.
package envstruct

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrEnvNotSet    = errors.New("environment variable not set")
	ErrInvalidValue = errors.New("v must be a pointer to a struct")
)

// Populate sets every `env:"NAME"`-tagged field of the struct pointed to by
// v from the environment. lookupEnv has the signature of [os.LookupEnv].
// A missing variable falls back to the `envDefault` tag; without either the
// field contributes an ErrEnvNotSet to the joined error. Only string fields
// are supported: parsing into richer types happens at the call site, where
// a bad value can be reported with context.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptrRef := reflect.ValueOf(v)
	if ptrRef.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: not pointer: %v", ErrInvalidValue, v)
	}
	ref := ptrRef.Elem()
	if ref.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not struct: %v", ErrInvalidValue, v)
	}

	refType := ref.Type()
	var errs []error

	for i := range refType.NumField() {
		field := ref.Field(i)
		fieldType := refType.Field(i)

		name, tagged := fieldType.Tag.Lookup("env")
		if !tagged {
			continue
		}
		if !field.CanSet() {
			errs = append(errs, fmt.Errorf("%w: cannot set field: %s", ErrInvalidValue, fieldType.Name))
			continue
		}
		if field.Kind() != reflect.String {
			errs = append(errs, fmt.Errorf("%w: only strings are supported - field: %s, type: %s, env: %s",
				ErrInvalidValue, fieldType.Name, field.Kind().String(), name))
			continue
		}

		value, ok := lookupEnv(name)
		if !ok {
			if value, ok = fieldType.Tag.Lookup("envDefault"); !ok {
				errs = append(errs, fmt.Errorf("%w: environment variable not set: %s", ErrEnvNotSet, name))
				continue
			}
		}
		field.SetString(value)
	}

	return errors.Join(errs...)
}
