package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the entire
// configuration: all module definitions plus the deployment stack.
type Model struct {
	Runners map[string]*RunnerDefinition
	Assets  map[string]*AssetDefinition
	Stack   *Stack
}

// Stack represents the user's deployment plan: the set of steps to execute
// and the shared resources they use.
type Stack struct {
	Steps     []*Step
	Resources []*Resource
}

// Step is the format-agnostic representation of a `step` block: one unit of
// deployment work, such as a terraform apply or a health probe.
type Step struct {
	RunnerType string
	Name       string
	Arguments  map[string]hcl.Expression
	Uses       map[string]hcl.Expression
	DependsOn  []string
}

// Resource is the format-agnostic representation of a `resource` block: a
// stateful object with a create/destroy lifecycle shared between steps.
type Resource struct {
	AssetType string
	Name      string
	Arguments map[string]hcl.Expression
	DependsOn []string
}

// --- Module Manifest Models ---

// RunnerDefinition is the format-agnostic representation of a runner's manifest.
type RunnerDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
	Uses        map[string]*UsesDefinition
}

// AssetDefinition is the format-agnostic representation of an asset's manifest.
type AssetDefinition struct {
	Type        string
	Description string
	Lifecycle   *AssetLifecycle
	Inputs      map[string]*InputDefinition
}

// Lifecycle maps a runner's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// AssetLifecycle maps an asset's events to Go handler names.
type AssetLifecycle struct {
	Create  string
	Destroy string
}

// InputDefinition defines a single input argument for a runner or asset.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value from a runner.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}

// UsesDefinition defines an asset dependency for a runner.
type UsesDefinition struct {
	LocalName string
	AssetType string
}
