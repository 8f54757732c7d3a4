// Package registry is the glue between template code and the compilation
// engine.
//
// Every template type exposes a builder-style Describe() returning its
// Contract: kind, typed inputs, attach slots and required companion
// directives. The registry evaluates Describe once, at registration time, and
// keeps the result in a side table keyed by template identity; nothing is
// reflected at compile time.
//
// A Registry is an explicit value passed to the reconciler and the compiler.
// It also holds the output providers and the compositions declared in
// configuration. Validate checks that the whole set is consistent before any
// page is compiled.
package registry
