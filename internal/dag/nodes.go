package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/registry"
)

// StepNodeID returns the canonical graph ID for a step.
func StepNodeID(runnerType, name string) string {
	return fmt.Sprintf("step.%s.%s", runnerType, name)
}

// ResourceNodeID returns the canonical graph ID for a resource.
func ResourceNodeID(assetType, name string) string {
	return fmt.Sprintf("resource.%s.%s", assetType, name)
}

// createNodes performs the first pass of graph creation.
func createNodes(ctx context.Context, stack *config.Stack, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, s := range stack.Steps {
		id := StepNodeID(s.RunnerType, s.Name)
		if _, exists := graph.Nodes[id]; exists {
			return fmt.Errorf("duplicate step definition '%s'", id)
		}
		graph.Nodes[id] = &Node{
			ID:         id,
			Name:       s.Name,
			Type:       StepNode,
			StepConfig: s,
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
		logger.Debug("Created step node.", "id", id)
	}
	for _, r := range stack.Resources {
		id := ResourceNodeID(r.AssetType, r.Name)
		if _, exists := graph.Nodes[id]; exists {
			return fmt.Errorf("duplicate resource definition '%s'", id)
		}
		graph.Nodes[id] = &Node{
			ID:             id,
			Name:           r.Name,
			Type:           ResourceNode,
			ResourceConfig: r,
			Deps:           make(map[string]*Node),
			Dependents:     make(map[string]*Node),
		}
		logger.Debug("Created resource node.", "id", id)
	}
	return nil
}

// linkNodes performs the second pass, establishing dependency links.
func linkNodes(ctx context.Context, model *config.Model, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting node linking pass.")

	for _, node := range graph.Nodes {
		var dependsOn []string
		var expressions []hcl.Expression

		if node.Type == StepNode {
			dependsOn = node.StepConfig.DependsOn
			for _, expr := range node.StepConfig.Arguments {
				expressions = append(expressions, expr)
			}
			for _, expr := range node.StepConfig.Uses {
				expressions = append(expressions, expr)
			}
		} else {
			dependsOn = node.ResourceConfig.DependsOn
			for _, expr := range node.ResourceConfig.Arguments {
				expressions = append(expressions, expr)
			}
		}

		if err := linkExplicitDeps(ctx, node, dependsOn, graph); err != nil {
			return err
		}
		for _, expr := range expressions {
			if err := linkImplicitDeps(ctx, node, expr, graph, r); err != nil {
				return err
			}
		}
	}
	logger.Debug("Finished node linking pass.")
	return nil
}

// link records a dependency edge, ignoring duplicates.
func link(from, to *Node) {
	if _, exists := from.Deps[to.ID]; exists {
		return
	}
	from.Deps[to.ID] = to
	to.Dependents[from.ID] = from
}
