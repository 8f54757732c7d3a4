// Package entity holds the runtime shapes of the units of compilation.
//
// Every template embeds exactly one of Component, Directive or Composition,
// all of which embed Base. Base carries identity (scope id, parent id, kind),
// a private state bag, the bound property values and the helpers that write
// fragments into the entity's own scope.
//
// ChildRef is the lightweight stand-in produced by the reconciler: it points at
// a template, holds the captured property bindings and is bootstrapped into a
// real instance when the orchestrator emits it.
//
// Hooks default to no-ops; templates override the ones they need. Contributing
// fragments before the orchestrator initialized the scope is an error.
package entity
