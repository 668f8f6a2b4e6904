// Package integration_tests holds end-to-end tests that drive graph files
// through the registry, the robot session, the engine and the code generator
// together. The tests live in the subpackages, one per area.
package integration_tests
