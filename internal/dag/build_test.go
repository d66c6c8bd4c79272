package dag

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/registry"
)

// expr parses a single HCL expression for use in test models.
func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	parsed, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "failed to parse expression %q: %s", src, diags)
	return parsed
}

func emptyRegistry() *registry.Registry {
	return registry.New()
}

func modelWithSteps(steps ...*config.Step) *config.Model {
	return &config.Model{
		Runners: map[string]*config.RunnerDefinition{},
		Assets:  map[string]*config.AssetDefinition{},
		Stack:   &config.Stack{Steps: steps},
	}
}

func TestBuild_ImplicitReferenceOrdersSteps(t *testing.T) {
	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "infrastructure"},
		&config.Step{
			RunnerType: "terraform",
			Name:       "model_api",
			Arguments: map[string]hcl.Expression{
				"vars": expr(t, `{ project_id = step.terraform.infrastructure.output.project_id }`),
			},
		},
	)

	graph, err := Build(context.Background(), model, emptyRegistry())
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 2)

	apiNode := graph.Nodes["step.terraform.model_api"]
	require.NotNil(t, apiNode)
	assert.Contains(t, apiNode.Deps, "step.terraform.infrastructure")

	infraNode := graph.Nodes["step.terraform.infrastructure"]
	assert.Contains(t, infraNode.Dependents, "step.terraform.model_api")
}

func TestBuild_ExplicitDependsOn(t *testing.T) {
	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "mlflow"},
		&config.Step{
			RunnerType: "terraform",
			Name:       "infrastructure",
			DependsOn:  []string{"terraform.mlflow"},
		},
	)

	graph, err := Build(context.Background(), model, emptyRegistry())
	require.NoError(t, err)
	assert.Contains(t, graph.Nodes["step.terraform.infrastructure"].Deps, "step.terraform.mlflow")
}

func TestBuild_UnknownDependsOnFails(t *testing.T) {
	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "a", DependsOn: []string{"terraform.missing"}},
	)

	_, err := Build(context.Background(), model, emptyRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent identifier")
}

func TestBuild_UnknownStepReferenceFails(t *testing.T) {
	model := modelWithSteps(
		&config.Step{
			RunnerType: "print",
			Name:       "summary",
			Arguments: map[string]hcl.Expression{
				"input": expr(t, `{ url = step.terraform.missing.output.url }`),
			},
		},
	)

	_, err := Build(context.Background(), model, emptyRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestBuild_SelfReferenceFails(t *testing.T) {
	model := modelWithSteps(
		&config.Step{
			RunnerType: "terraform",
			Name:       "loop",
			Arguments: map[string]hcl.Expression{
				"vars": expr(t, `{ x = step.terraform.loop.output.x }`),
			},
		},
	)

	_, err := Build(context.Background(), model, emptyRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references its own output")
}

func TestBuild_CycleDetected(t *testing.T) {
	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "a", DependsOn: []string{"terraform.b"}},
		&config.Step{RunnerType: "terraform", Name: "b", DependsOn: []string{"terraform.a"}},
	)

	_, err := Build(context.Background(), model, emptyRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestBuild_DeclaredOutputsAreValidated(t *testing.T) {
	reg := registry.New()
	reg.DefinitionRegistry["docker"] = &config.RunnerDefinition{
		Type: "docker",
		Outputs: map[string]*config.OutputDefinition{
			"tag": {Name: "tag"},
		},
	}

	model := modelWithSteps(
		&config.Step{RunnerType: "docker", Name: "image"},
		&config.Step{
			RunnerType: "terraform",
			Name:       "model_api",
			Arguments: map[string]hcl.Expression{
				"vars": expr(t, `{ image = step.docker.image.output.digest }`),
			},
		},
	)

	_, err := Build(context.Background(), model, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no output named 'digest'")
}

func TestBuild_UndeclaredOutputsAreDynamic(t *testing.T) {
	// The terraform runner declares no outputs in its manifest: any output
	// name must be accepted and resolved at runtime.
	reg := registry.New()
	reg.DefinitionRegistry["terraform"] = &config.RunnerDefinition{Type: "terraform"}

	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "infrastructure"},
		&config.Step{
			RunnerType: "terraform",
			Name:       "mlflow",
			Arguments: map[string]hcl.Expression{
				"vars": expr(t, `{ bucket = step.terraform.infrastructure.output.artifact_bucket }`),
			},
		},
	)

	_, err := Build(context.Background(), model, reg)
	require.NoError(t, err)
}

func TestBuild_UsesLinksResource(t *testing.T) {
	model := &config.Model{
		Runners: map[string]*config.RunnerDefinition{},
		Assets:  map[string]*config.AssetDefinition{},
		Stack: &config.Stack{
			Steps: []*config.Step{
				{
					RunnerType: "http_check",
					Name:       "model_api",
					Uses: map[string]hcl.Expression{
						"client": expr(t, `resource.http_client.shared`),
					},
				},
			},
			Resources: []*config.Resource{
				{AssetType: "http_client", Name: "shared"},
			},
		},
	}

	graph, err := Build(context.Background(), model, emptyRegistry())
	require.NoError(t, err)

	checkNode := graph.Nodes["step.http_check.model_api"]
	require.NotNil(t, checkNode)
	assert.Contains(t, checkNode.Deps, "resource.http_client.shared")
}

func TestBuild_DuplicateStepFails(t *testing.T) {
	model := modelWithSteps(
		&config.Step{RunnerType: "terraform", Name: "a"},
		&config.Step{RunnerType: "terraform", Name: "a"},
	)

	_, err := Build(context.Background(), model, emptyRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step definition")
}
