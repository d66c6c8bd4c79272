package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/dag"
)

// runResourceNode creates a resource by calling its asset's create handler
// and stores the live instance for later injection into steps.
func (e *Executor) runResourceNode(ctx context.Context, node *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("resource", node.ID)
	logger.Info("🛠️ Creating resource")

	assetDef, ok := e.registry.AssetDefinitionRegistry[node.ResourceConfig.AssetType]
	if !ok {
		return fmt.Errorf("unknown asset type '%s'", node.ResourceConfig.AssetType)
	}
	createHandler, ok := e.registry.AssetHandlerRegistry[assetDef.Lifecycle.Create]
	if !ok {
		return fmt.Errorf("create handler '%s' not registered", assetDef.Lifecycle.Create)
	}

	evalCtx := e.buildEvalContext(ctx, node)

	var inputStruct any
	if createHandler.NewInput != nil {
		inputStruct = createHandler.NewInput()
	}
	if inputStruct != nil {
		err := e.converter.DecodeBody(ctx, inputStruct, node.ResourceConfig.Arguments, assetDef.Inputs, evalCtx)
		if err != nil {
			return fmt.Errorf("failed to decode arguments for resource '%s': %w", node.ID, err)
		}
	}

	createFunc := reflect.ValueOf(createHandler.CreateFn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if inputStruct == nil {
		if createFunc.Type().NumIn() > 1 {
			callArgs = append(callArgs, reflect.Zero(createFunc.Type().In(1)))
		}
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	results := createFunc.Call(callArgs)
	instance, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	e.resourceInstances.Store(node.ID, instance)
	logger.Info("✅ Resource created")
	return nil
}

// destroyResource tears down a live resource instance. Destruction errors are
// logged, not propagated: the deployment outcome is already decided by then.
func (e *Executor) destroyResource(ctx context.Context, node *dag.Node) {
	logger := ctxlog.FromContext(ctx).With("resource", node.ID)

	instance, loaded := e.resourceInstances.LoadAndDelete(node.ID)
	if !loaded {
		return
	}

	assetDef, ok := e.registry.AssetDefinitionRegistry[node.ResourceConfig.AssetType]
	if !ok {
		logger.Error("Cannot destroy resource of unknown asset type.", "asset_type", node.ResourceConfig.AssetType)
		return
	}
	destroyHandler, ok := e.registry.AssetHandlerRegistry[assetDef.Lifecycle.Destroy]
	if !ok || destroyHandler.DestroyFn == nil {
		logger.Error("Destroy handler not registered.", "handler", assetDef.Lifecycle.Destroy)
		return
	}

	logger.Info("🗑️ Destroying resource")
	destroyFunc := reflect.ValueOf(destroyHandler.DestroyFn)
	results := destroyFunc.Call([]reflect.Value{reflect.ValueOf(instance)})
	if len(results) > 0 {
		if errResult := results[0].Interface(); errResult != nil {
			logger.Error("Resource destruction failed.", "error", errResult.(error))
			return
		}
	}
	logger.Debug("Resource destroyed.")
}
