// Package hcl_adapter loads page files and declared compositions written in
// HCL and translates them into the format-agnostic config model.
package hcl_adapter
