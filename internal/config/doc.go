// Package config defines the format-agnostic model of what a build compiles
// (pages and declared compositions) together with the Loader interface that
// concrete formats implement.
//
// The model is the single source of truth for the app package. The HCL
// implementation lives in hcl_adapter.
package config
