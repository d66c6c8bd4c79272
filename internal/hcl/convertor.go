package hcl

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody evaluates HCL expressions, applies defaults, and populates the
// provided Go struct using reflection. Field lookup names come from the
// struct's `hcl` tags.
func (c *Converter) DecodeBody(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		lookupName := field.Name
		if tag := field.Tag.Get("hcl"); tag != "" {
			lookupName = strings.Split(tag, ",")[0]
		}

		inputDef, defExists := defs[lookupName]
		if !defExists {
			continue
		}

		targetPtr := fieldVal.Addr().Interface()
		argExpr, argProvided := args[lookupName]

		if argProvided {
			val, diags := argExpr.Value(evalCtx)
			if diags.HasErrors() {
				return diags
			}
			if err := c.decode(val, targetPtr); err != nil {
				return fmt.Errorf("failed to decode argument '%s': %w", lookupName, err)
			}
		} else {
			if inputDef.Default == nil && !inputDef.Optional {
				return fmt.Errorf("missing required argument %q", lookupName)
			}

			if inputDef.Default != nil {
				if err := c.decode(*inputDef.Default, targetPtr); err != nil {
					return fmt.Errorf("failed to apply default for '%s': %w", lookupName, err)
				}
			}
		}
	}
	logger.Debug("Finished HCL body decoding.")
	return nil
}

// decode handles the conversion and decoding of a cty.Value into a Go pointer.
func (c *Converter) decode(val cty.Value, goVal any) error {
	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		return fmt.Errorf("target for decoding must be a pointer, got %T", goVal)
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		// Could not imply a cty.Type from the Go type; attempt direct decoding.
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(convertedVal, goVal)
}

// ToCtyValue converts a native Go value returned by a runner handler into a
// cty.Value for the engine's evaluation context.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	if ctyVal, ok := v.(cty.Value); ok {
		return ctyVal, nil
	}
	return goToCty(reflect.ValueOf(v))
}

// goToCty recursively converts Go values, including the map[string]any
// shapes produced by JSON decoding, into cty values.
func goToCty(rv reflect.Value) (cty.Value, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return cty.BoolVal(rv.Bool()), nil
	case reflect.String:
		return cty.StringVal(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return cty.NumberFloatVal(rv.Float()), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		if rv.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, rv.Len())
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			elem, err := goToCty(rv.MapIndex(reflect.ValueOf(k)))
			if err != nil {
				return cty.NilVal, fmt.Errorf("map key %q: %w", k, err)
			}
			attrs[k] = elem
		}
		return cty.ObjectVal(attrs), nil
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := goToCty(rv.Index(i))
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			elems = append(elems, elem)
		}
		return cty.TupleVal(elems), nil
	case reflect.Struct:
		// Structs with cty tags are handled by gocty directly.
		impliedType, err := gocty.ImpliedType(rv.Interface())
		if err != nil {
			return cty.NilVal, err
		}
		return gocty.ToCtyValue(rv.Interface(), impliedType)
	default:
		return cty.NilVal, fmt.Errorf("unsupported Go kind %s for cty conversion", rv.Kind())
	}
}
