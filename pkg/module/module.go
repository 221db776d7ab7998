// SPDX-License-Identifier: MPL-2.0

package module

import (
	"github.com/nextmain/nextmain/pkg/types"
)

type (
	// Module is a source file taking part in a transpilation run.
	Module struct {
		// Path is the absolute path of the module's source file.
		Path types.FilesystemPath
		// Name is the specifier the module was first imported as.
		Name types.Specifier

		container *Container
	}

	// Factory constructs a module for a resolved path. Implementations must
	// register the module with the container so the next lookup hits.
	Factory func(path types.FilesystemPath, name types.Specifier, c *Container) *Module
)

// New constructs a Module and registers it with c. When another module was
// registered for path first, that module is returned instead so callers
// always share one instance per path.
func New(path types.FilesystemPath, name types.Specifier, c *Container) *Module {
	m := &Module{Path: path, Name: name, container: c}
	if c == nil {
		return m
	}
	return c.Register(m)
}

// Container returns the container the module was created in.
func (m *Module) Container() *Container { return m.container }

// String returns the module path.
func (m *Module) String() string { return string(m.Path) }
