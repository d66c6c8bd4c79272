package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/registry"
)

// parsedStepRef holds information extracted from an HCL traversal of the form
// `step.<runner_type>.<instance_name>.output.<output_name>`.
type parsedStepRef struct {
	RunnerType string
	Name       string
	// Attr is the first attribute accessed below the instance name; empty if
	// the reference stops at the instance itself.
	Attr string
	// OutputName is the attribute accessed below `.output`, if any.
	OutputName string
}

// parseStepTraversal analyzes an HCL traversal to extract a step reference.
func parseStepTraversal(traversal hcl.Traversal) (*parsedStepRef, bool) {
	if len(traversal) < 3 || traversal.RootName() != "step" {
		return nil, false
	}

	runnerAttr, runnerOk := traversal[1].(hcl.TraverseAttr)
	nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
	if !runnerOk || !nameOk {
		return nil, false
	}

	ref := &parsedStepRef{
		RunnerType: runnerAttr.Name,
		Name:       nameAttr.Name,
	}
	if len(traversal) > 3 {
		if attr, ok := traversal[3].(hcl.TraverseAttr); ok {
			ref.Attr = attr.Name
		}
	}
	if len(traversal) > 4 {
		if attr, ok := traversal[4].(hcl.TraverseAttr); ok {
			ref.OutputName = attr.Name
		}
	}
	return ref, true
}

// linkImplicitDeps parses an expression for variable traversals and creates a
// dependency link for every step or resource it references. This is what
// makes `step.terraform.infrastructure.output.bucket_name` inside a later
// step's arguments an ordering constraint.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)

	for _, traversal := range expr.Variables() {
		if ref, ok := parseStepTraversal(traversal); ok {
			depNodeID := StepNodeID(ref.RunnerType, ref.Name)
			depNode, found := graph.Nodes[depNodeID]
			if !found {
				return fmt.Errorf("implicit dependency error in '%s': referenced step '%s' does not exist", node.ID, depNodeID)
			}
			if depNode == node {
				return fmt.Errorf("step '%s' references its own output", node.ID)
			}

			if err := validateOutputReference(ref, r); err != nil {
				return fmt.Errorf("in '%s': %w", node.ID, err)
			}

			logger.Debug("Linking implicit dependency.", "from", node.ID, "to", depNodeID)
			link(node, depNode)
			continue
		}

		// Resource references appear in `uses` blocks.
		if len(traversal) >= 3 && traversal.RootName() == "resource" {
			typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
			nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
			if typeOk && nameOk {
				depID := ResourceNodeID(typeAttr.Name, nameAttr.Name)
				if depNode, ok := graph.Nodes[depID]; ok {
					logger.Debug("Linking implicit dependency.", "from", node.ID, "to", depID)
					link(node, depNode)
				}
			}
		}
	}
	return nil
}

// validateOutputReference rejects step references that bypass `.output` and
// references to output names the producing runner's manifest never declares.
func validateOutputReference(ref *parsedStepRef, r *registry.Registry) error {
	if ref.Attr == "" {
		return nil
	}
	if ref.Attr != "output" {
		return fmt.Errorf("step reference 'step.%s.%s.%s' must go through '.output'", ref.RunnerType, ref.Name, ref.Attr)
	}
	if ref.OutputName == "" {
		return nil
	}

	runnerDef, ok := r.DefinitionRegistry[ref.RunnerType]
	if !ok || len(runnerDef.Outputs) == 0 {
		// Undeclared output sets are dynamic; nothing to check.
		return nil
	}
	if _, declared := runnerDef.Outputs[ref.OutputName]; !declared {
		return fmt.Errorf("runner '%s' declares no output named '%s'", ref.RunnerType, ref.OutputName)
	}
	return nil
}
