// Package extension discovers node types declared in HCL manifests:
//
//	node_type "lift_left_leg" {
//	  kind         = "action"
//	  display_name = "Lift Left Leg"
//	  action       = "lift_leg"
//	  params       = { leg = "left" }
//	}
//
// An action type dispatches its declared action with every parameter as an
// argument. A sensor type reads one key of the robot's sensor snapshot. The
// optional code attribute replaces the generated fragment; {{param "name"}}
// renders a parameter literal and the usual in/out/state/iter directives pass
// through to the code generator.
package extension
