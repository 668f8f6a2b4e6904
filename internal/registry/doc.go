// Package registry maps node type ids to constructors.
//
// The table is filled once at process start: first the fixed built-in set
// (Module values compiled into the binary), then every extension Source. The
// two share one namespace and a later duplicate is rejected, so an extension
// can never shadow a built-in. Load seals the registry; afterwards it is a
// read-only lookup table.
package registry
