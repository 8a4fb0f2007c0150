package protocol

import "strings"

const (
	// scriptFileMarker ends the quoted script-file reference in a
	// traceback frame: `File "/tmp/.../script_x.py", line 3, in f`.
	scriptFileMarker = `.py"`
	// markerDelimiters is the number of bytes consumed from the marker's
	// start: the marker itself plus the ", " that follows it.
	markerDelimiters = 6
)

// FormatException builds the user-facing message for a script fault. The
// last (innermost) traceback frame is stripped of host-filesystem path
// information and joined with the exception text. An empty traceback
// yields the exception verbatim.
func FormatException(exception string, traceback []string) string {
	if len(traceback) == 0 {
		return exception
	}
	return StripFrame(traceback[len(traceback)-1]) + ", " + exception
}

// StripFrame removes everything up to and including the script-file
// reference from a traceback frame. Frames without the marker (or where
// the marker ends the frame) are returned unchanged rather than sliced
// out of bounds.
func StripFrame(frame string) string {
	idx := strings.Index(frame, scriptFileMarker)
	if idx < 0 || idx+markerDelimiters > len(frame) {
		return frame
	}
	return frame[idx+markerDelimiters:]
}
