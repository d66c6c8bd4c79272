package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/fsutil"
	"github.com/vk/stackctl/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers every .hcl file under the given paths, parses them, and
// translates their contents into a single unified config model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	model := &config.Model{
		Runners: make(map[string]*config.RunnerDefinition),
		Assets:  make(map[string]*config.AssetDefinition),
		Stack:   &config.Stack{},
	}

	parser := hclparse.NewParser()

	for _, path := range paths {
		filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover HCL files under %q: %w", path, err)
		}
		if len(filePaths) == 0 {
			logger.Warn("No .hcl files found in path.", "path", path)
			continue
		}

		for _, filePath := range filePaths {
			hclFile, diags := parser.ParseHCLFile(filePath)
			if diags.HasErrors() {
				return nil, nil, fmt.Errorf("failed to parse %s: %w", filePath, diags)
			}

			var fileSchema schema.File
			if diags := gohcl.DecodeBody(hclFile.Body, nil, &fileSchema); diags.HasErrors() {
				return nil, nil, fmt.Errorf("failed to decode %s: %w", filePath, diags)
			}

			if err := l.mergeFile(ctx, model, &fileSchema, filePath); err != nil {
				return nil, nil, err
			}
			logger.Debug("Loaded HCL file.", "file", filePath)
		}
	}

	logger.Debug("Configuration loading complete.",
		"steps", len(model.Stack.Steps),
		"resources", len(model.Stack.Resources),
		"runners", len(model.Runners),
		"assets", len(model.Assets),
	)

	return model, NewConverter(), nil
}

// mergeFile folds one parsed file into the accumulated model.
func (l *Loader) mergeFile(ctx context.Context, model *config.Model, f *schema.File, filePath string) error {
	for _, s := range f.Steps {
		model.Stack.Steps = append(model.Stack.Steps, l.translateStep(s))
	}
	for _, r := range f.Resources {
		model.Stack.Resources = append(model.Stack.Resources, l.translateResource(r))
	}
	for _, rd := range f.Runners {
		if _, exists := model.Runners[rd.Type]; exists {
			return fmt.Errorf("duplicate runner definition '%s' in %s", rd.Type, filePath)
		}
		translated, err := l.translateRunnerDefinition(ctx, rd)
		if err != nil {
			return err
		}
		model.Runners[rd.Type] = translated
	}
	for _, ad := range f.Assets {
		if _, exists := model.Assets[ad.Type]; exists {
			return fmt.Errorf("duplicate asset definition '%s' in %s", ad.Type, filePath)
		}
		translated, err := l.translateAssetDefinition(ctx, ad)
		if err != nil {
			return err
		}
		model.Assets[ad.Type] = translated
	}
	return nil
}
