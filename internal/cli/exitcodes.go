package cli

import "github.com/outflow-labs/pysandbox/internal/pyerr"

// Exit codes. 1 is reserved for faults raised by the sandboxed code
// itself; infrastructure failures get distinct codes so callers can
// tell them apart without parsing stderr.
const (
	exitFault    = 1
	exitUsage    = 2
	exitConfig   = 3
	exitSetup    = 4
	exitTimeout  = 5
	exitExit     = 6
	exitProtocol = 7
)

func exitCodeFor(err error) int {
	pe, ok := pyerr.As(err)
	if !ok {
		return exitSetup
	}
	switch pe.Kind {
	case pyerr.KindConfig:
		return exitConfig
	case pyerr.KindSetup:
		return exitSetup
	case pyerr.KindTimeout:
		return exitTimeout
	case pyerr.KindExit:
		return exitExit
	case pyerr.KindProtocol:
		return exitProtocol
	case pyerr.KindScript, pyerr.KindEval:
		return exitFault
	default:
		return exitSetup
	}
}
