// Package imports registers every import kind with the core registry.
// Import it for side effects wherever a core.Service runs imports.
package imports

// Each file registers its kind from init().
