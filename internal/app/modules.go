package app

import (
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/modules/basic"
)

// coreModules is the definitive list of template libraries compiled into the
// amoeba binary.
var coreModules = []registry.Module{
	&basic.Module{},
}
