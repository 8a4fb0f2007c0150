// Package codes holds the stable machine-readable error codes emitted by
// the CLI and carried on typed errors. Codes are part of the external
// contract: scripts and the orchestration layer match on them.
package codes

const (
	Usage = "PYX_E_USAGE"
	IO    = "PYX_E_IO"

	Config   = "PYX_E_CONFIG"
	Setup    = "PYX_E_SETUP"
	Timeout  = "PYX_E_TIMEOUT"
	Exit     = "PYX_E_NONZERO_EXIT"
	Protocol = "PYX_E_PROTOCOL"
	Script   = "PYX_E_SCRIPT"
	Eval     = "PYX_E_EVAL"
)
