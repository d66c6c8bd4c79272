package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/dag"
)

// buildEvalContext creates the HCL evaluation context for a node. Completed
// step dependencies are exposed as `step.<runner_type>.<name>.output`.
func (e *Executor) buildEvalContext(ctx context.Context, node *dag.Node) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]cty.Value)

	stepOutputsByRunner := make(map[string]map[string]cty.Value)

	for _, depNode := range node.Deps {
		if depNode.Type != dag.StepNode {
			continue
		}
		if depNode.State() != dag.Done {
			continue
		}
		output := depNode.GetOutput()
		if output == cty.NilVal {
			output = cty.NullVal(cty.DynamicPseudoType)
		}
		runnerType := depNode.StepConfig.RunnerType
		if _, ok := stepOutputsByRunner[runnerType]; !ok {
			stepOutputsByRunner[runnerType] = make(map[string]cty.Value)
		}
		stepOutputsByRunner[runnerType][depNode.Name] = cty.ObjectVal(map[string]cty.Value{
			"output": output,
		})
	}

	finalStepOutputs := make(map[string]cty.Value)
	for runnerType, instancesMap := range stepOutputsByRunner {
		finalStepOutputs[runnerType] = cty.ObjectVal(instancesMap)
	}

	if len(finalStepOutputs) > 0 {
		vars["step"] = cty.ObjectVal(finalStepOutputs)
	}
	logger.Debug("Built HCL evaluation context.", "node", node.ID, "vars_count", len(vars))
	return &hcl.EvalContext{Variables: vars}
}
