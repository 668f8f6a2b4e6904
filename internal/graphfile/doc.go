// Package graphfile reads and writes node graphs in HCL:
//
//	node "sense" {
//	  type   = "sensor_input"
//	  params = { sensor_type = "ultrasonic", threshold = 0.3 }
//	}
//
//	connect {
//	  from = "sense.triggered"
//	  to   = "check.condition"
//	}
//
// Parameters may reference variables declared in the same file and call a
// small set of functions (abs, ceil, floor, max, min, format, lower, upper,
// merge):
//
//	variable "clearance" {
//	  default = 0.3
//	}
//
//	node "sense" {
//	  type   = "sensor_input"
//	  params = { sensor_type = "ultrasonic", threshold = max(var.clearance, 0.1) }
//	}
//
// Nodes are created in file order through a graph.Factory, so unknown types
// and parameters are rejected at load time.
package graphfile
