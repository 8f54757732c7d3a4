// Package fragment contains the output-fragment builders entities contribute
// into their scopes.
//
// A builder is mutable until Emit is called. Emit produces a fresh Node value
// each time, after running the builder's transformer pipeline in registration
// order, so a node handed out by Emit is never changed by later patches to the
// builder. Patching an element that was already resolved (adding an attribute
// or a style entry) is therefore always expressed as a builder method call made
// before the final Emit.
package fragment
