package ids

import (
	"strings"

	"github.com/google/uuid"
)

const scriptSuffix = ".py"

// NewScriptFileName returns a file name for a materialized user script.
// Names are unique per call so concurrent calls never collide, and the
// module name derived from it (the name minus the extension) is a valid
// Python identifier.
func NewScriptFileName() string {
	return "script_" + strings.ReplaceAll(uuid.NewString(), "-", "") + scriptSuffix
}

// ScriptModule strips the script extension, yielding the module name sent
// to the execution driver.
func ScriptModule(fileName string) string {
	return strings.TrimSuffix(fileName, scriptSuffix)
}

// NewCallID returns a short identifier used to correlate the log lines of
// one execution or evaluation call.
func NewCallID() string {
	return uuid.NewString()
}
