// Package loader provides the plugin-like feature loading system.
//
// Each HTTP feature implements Feature and is registered on a Manager, which
// loads the enabled ones onto the Fiber router at startup.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Features such as runs, history and health are built and tested in
// isolation and only meet in the start command.
package loader
