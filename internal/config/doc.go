// Package config holds every tunable of robogrid together with its default.
//
// Values are layered: Default, then an optional HCL or YAML file read by LoadFile,
// then whatever the command line overrides. Validate is called once the
// layers are merged.
package config
