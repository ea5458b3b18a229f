package interpolation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// TagName marks fields to expand: `env_interpolation:"yes"`.
const TagName = "env_interpolation"

// InterpolateStruct expands tagged fields of the struct v points to, in place, against the
// process environment.
func InterpolateStruct(v any) error {
	return Interpolate(v, os.LookupEnv)
}

// Interpolate expands tagged fields using lookup. Tagged fields may be strings, string
// maps, string slices, or structs and struct pointers (which are walked in turn).
func Interpolate(v any, lookup LookupFunc) error {
	if v == nil {
		return nil
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer {
		return fmt.Errorf("expected pointer to struct, got %T", v)
	}
	if val.IsNil() {
		return nil
	}
	if val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("expected pointer to struct, got %T", v)
	}

	return walkStruct(val.Elem(), "", lookup)
}

func walkStruct(val reflect.Value, prefix string, lookup LookupFunc) error {
	typ := val.Type()
	var errs []error

	for i := range val.NumField() {
		field := val.Field(i)
		info := typ.Field(i)
		if !field.CanSet() || !strings.EqualFold(info.Tag.Get(TagName), "yes") {
			continue
		}
		if err := expandValue(field, prefix+info.Name, lookup); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func expandValue(field reflect.Value, path string, lookup LookupFunc) error {
	switch field.Kind() {
	case reflect.String:
		if field.String() == "" {
			return nil
		}
		out, err := Expand(field.String(), lookup)
		if err != nil {
			return fmt.Errorf("field %s: %w", path, err)
		}
		field.SetString(out)

	case reflect.Map:
		if field.IsNil() || field.Type().Key().Kind() != reflect.String ||
			field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		var errs []error
		iter := field.MapRange()
		updates := map[reflect.Value]string{}
		for iter.Next() {
			out, err := Expand(iter.Value().String(), lookup)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s[%s]: %w", path, iter.Key().String(), err))
				continue
			}
			updates[iter.Key()] = out
		}
		for k, v := range updates {
			field.SetMapIndex(k, reflect.ValueOf(v).Convert(field.Type().Elem()))
		}
		return errors.Join(errs...)

	case reflect.Slice:
		var errs []error
		for j := range field.Len() {
			if err := expandValue(field.Index(j), fmt.Sprintf("%s[%d]", path, j), lookup); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)

	case reflect.Struct:
		return walkStruct(field, path+".", lookup)

	case reflect.Pointer:
		if field.IsNil() || field.Elem().Kind() != reflect.Struct {
			return nil
		}
		return walkStruct(field.Elem(), path+".", lookup)
	}
	return nil
}
