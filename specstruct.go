package aioconf

import (
	"fmt"
	"reflect"
	"strings"
)

// SpecFromStruct derives a spec tree from a struct carrying default values.
// Field names map to option names unless a `conf:"..."` tag overrides them
// (`conf:"-"` skips the field). `env` and `flag` tags bind the environment
// variable and CLI flag. Nested structs and non-nil struct pointers become
// subconfigs. Option types are inferred from the field kinds; only kinds
// with a declared type equivalent are supported.
func SpecFromStruct(structWithDefaults any) (*Spec, error) {
	v := reflect.ValueOf(structWithDefaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("SpecFromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("SpecFromStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	spec, err := specFromValue(v)
	if err != nil {
		return nil, err
	}
	if err := spec.validate("", make(map[*Spec]bool)); err != nil {
		return nil, err
	}
	return spec, nil
}

func specFromValue(v reflect.Value) (*Spec, error) {
	spec := &Spec{
		Options:    make(map[string]*Option),
		Subconfigs: make(map[string]*Spec),
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("conf")
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		// Nested structs become subconfigs.
		isStruct := fieldValue.Kind() == reflect.Struct
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct
		if isStruct || isPtrToStruct {
			nested := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					continue
				}
				nested = fieldValue.Elem()
			}
			sub, err := specFromValue(nested)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			spec.Subconfigs[key] = sub
			continue
		}

		optType, def, err := optionFromField(fieldValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if _, dup := spec.Options[key]; dup {
			return nil, &SpecError{Path: key, Reason: "duplicate option name"}
		}
		spec.Options[key] = &Option{
			Name:    key,
			Type:    optType,
			Default: def,
			EnvVar:  field.Tag.Get("env"),
			CLIFlag: field.Tag.Get("flag"),
			Help:    field.Tag.Get("help"),
		}
	}

	return spec, nil
}

// optionFromField maps a struct field to a declared type and its canonical
// default value.
func optionFromField(v reflect.Value) (Type, any, error) {
	switch v.Kind() {
	case reflect.Bool:
		return TypeBool, v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInt, v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return TypeFloat, v.Float(), nil
	case reflect.String:
		return TypeString, v.String(), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.String {
			return "", nil, fmt.Errorf("unsupported slice element kind %s", v.Type().Elem().Kind())
		}
		out := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = v.Index(i).String()
		}
		return TypeStrings, out, nil
	default:
		return "", nil, fmt.Errorf("unsupported field kind %s", v.Kind())
	}
}
