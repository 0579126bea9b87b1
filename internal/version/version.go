// Package version holds the build-time version string shown in the
// status bar, and the wire protocol version used by the handshake.
package version

// String is the CLI/status-bar version string.
var String = "0.1.0"

// Protocol is the wire protocol version. Kept here for visibility
// alongside the CLI version; wire.ProtocolVersion is the value actually
// compared during the handshake.
const Protocol = 2
