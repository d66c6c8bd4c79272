package dag

import (
	"context"
	"fmt"

	"github.com/vk/stackctl/internal/ctxlog"
)

// linkExplicitDeps resolves dependencies from a `depends_on` list. Each entry
// is a "<type>.<name>" address that may refer to a step or a resource.
func linkExplicitDeps(ctx context.Context, node *Node, dependsOn []string, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)

	for _, depAddr := range dependsOn {
		// Resources take precedence, then steps; the address syntax is the
		// same for both.
		if depNode, found := graph.Nodes["resource."+depAddr]; found {
			logger.Debug("Resolved explicit dependency on resource.", "node_id", node.ID, "to", depNode.ID)
			link(node, depNode)
			continue
		}
		if depNode, found := graph.Nodes["step."+depAddr]; found {
			logger.Debug("Resolved explicit dependency on step.", "node_id", node.ID, "to", depNode.ID)
			link(node, depNode)
			continue
		}
		return fmt.Errorf("node '%s' depends on non-existent identifier '%s'", node.ID, depAddr)
	}
	return nil
}
