package app

import (
	"github.com/vk/stackctl/internal/registry"
	"github.com/vk/stackctl/modules/docker"
	"github.com/vk/stackctl/modules/drift_check"
	"github.com/vk/stackctl/modules/env_file"
	"github.com/vk/stackctl/modules/env_vars"
	"github.com/vk/stackctl/modules/gcloud"
	"github.com/vk/stackctl/modules/http_check"
	"github.com/vk/stackctl/modules/http_client"
	"github.com/vk/stackctl/modules/postgres"
	"github.com/vk/stackctl/modules/print"
	"github.com/vk/stackctl/modules/remote_state"
	"github.com/vk/stackctl/modules/terraform"
)

// coreModules is the definitive list of all modules that are compiled into
// the stackctl binary.
var coreModules = []registry.Module{
	&terraform.Module{},
	&remote_state.Module{},
	&gcloud.Module{},
	&docker.Module{},
	&http_client.Module{},
	&http_check.Module{},
	&env_file.Module{},
	&env_vars.Module{},
	&postgres.Module{},
	&drift_check.Module{},
	&print.Module{},
}
