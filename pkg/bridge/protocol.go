package bridge

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// ProtocolVersion is the bridge wire protocol this runtime speaks.
const ProtocolVersion = "v1.1.0"

// minimumProtocol is the oldest native-side protocol still accepted.
const minimumProtocol = "v1.0.0"

// MessageTypeHandshake opens a session. The runtime sends it first on
// Start with payload {"protocol": ProtocolVersion}; the native side
// answers with the same shape.
const MessageTypeHandshake = "ferry/handshake"

// CheckProtocol reports whether a peer protocol version can talk to
// this runtime: valid semver, same major version, and not older than
// the minimum supported release.
func CheckProtocol(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("invalid protocol version %q", version)
	}
	if semver.Major(version) != semver.Major(ProtocolVersion) {
		return fmt.Errorf("protocol major mismatch: peer %s, runtime %s", version, ProtocolVersion)
	}
	if semver.Compare(version, minimumProtocol) < 0 {
		return fmt.Errorf("peer protocol %s older than minimum supported %s", version, minimumProtocol)
	}
	return nil
}
