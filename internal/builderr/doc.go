// Package builderr defines the error taxonomy used across the compilation
// engine.
//
// Every failure raised by the engine belongs to one of three kinds:
//
//   - NotFound: a registry lookup could not be satisfied.
//   - InvalidOperation: the caller asked for something structurally invalid,
//     such as an ambiguous import rebinding or a malformed scope id.
//   - Basic: any other unexpected failure, wrapped so the original cause stays
//     reachable through errors.Unwrap.
//
// Kinds are matched with errors.Is against the exported sentinels, which keeps
// working through fmt.Errorf("...: %w") chains.
package builderr
