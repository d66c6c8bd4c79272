package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/ctxlog"
)

// ValidateRegistry performs a strict parity check between manifests and Go
// code: every definition must have a registered handler, and declared inputs
// must match the handler's input struct by name and type.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for runnerType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil || def.Lifecycle.OnRun == "" {
			errs = append(errs, fmt.Sprintf("runner '%s': manifest has no on_run lifecycle handler", runnerType))
			continue
		}
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
		if !ok {
			errs = append(errs, fmt.Sprintf("runner '%s': handler '%s' is not registered", runnerType, def.Lifecycle.OnRun))
			continue
		}
		errs = append(errs, validateInputs(logger, "runner", runnerType, def.Inputs, handler.InputType)...)

		for localName, use := range def.Uses {
			if _, ok := r.AssetDefinitionRegistry[use.AssetType]; !ok {
				errs = append(errs, fmt.Sprintf("runner '%s': uses '%s' references unknown asset type '%s'", runnerType, localName, use.AssetType))
			}
		}
	}

	for assetType, def := range r.AssetDefinitionRegistry {
		if def.Lifecycle == nil {
			errs = append(errs, fmt.Sprintf("asset '%s': manifest has no lifecycle block", assetType))
			continue
		}
		createHandler, ok := r.AssetHandlerRegistry[def.Lifecycle.Create]
		if !ok {
			errs = append(errs, fmt.Sprintf("asset '%s': create handler '%s' is not registered", assetType, def.Lifecycle.Create))
			continue
		}
		if _, ok := r.AssetHandlerRegistry[def.Lifecycle.Destroy]; !ok {
			errs = append(errs, fmt.Sprintf("asset '%s': destroy handler '%s' is not registered", assetType, def.Lifecycle.Destroy))
		}
		errs = append(errs, validateInputs(logger, "asset", assetType, def.Inputs, createHandler.InputType)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// validateInputs checks name and type parity between a manifest's declared
// inputs and the exported, hcl-tagged fields of the Go input struct.
func validateInputs(logger *slog.Logger, ownerKind, ownerName string, defs map[string]*config.InputDefinition, inputType reflect.Type) []string {
	var errs []string

	if inputType == nil {
		if len(defs) > 0 {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares inputs, but Go handler has no input struct", ownerKind, ownerName))
		}
		return errs
	}

	goInputs := make(map[string]reflect.StructField)
	for i := 0; i < inputType.NumField(); i++ {
		field := inputType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get("hcl"), ",")[0]
		if tagName != "" && tagName != "-" {
			goInputs[tagName] = field
		}
	}

	for name := range goInputs {
		if _, ok := defs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': Go struct has field for input '%s' which is not declared in manifest", ownerKind, ownerName, name))
		}
	}
	for name := range defs {
		if _, ok := goInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s '%s': manifest declares input '%s' which is not found in Go struct", ownerKind, ownerName, name))
		}
	}

	for name, inputDef := range defs {
		goField, ok := goInputs[name]
		if !ok {
			continue // Already reported by the presence check.
		}

		if inputDef.Type.Equals(cty.DynamicPseudoType) {
			logger.Debug("Manifest input with 'type = any' disables static type checking.", ownerKind, ownerName, "input", name)
			continue
		}

		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': could not imply cty type from Go field type %s: %v", ownerKind, ownerName, name, goField.Type, err))
			continue
		}

		if !inputDef.Type.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("%s '%s', input '%s': type mismatch, manifest requires '%s' but Go field '%s' is '%s'",
				ownerKind, ownerName, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}

	return errs
}
