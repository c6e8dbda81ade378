package types //nolint:revive // types is a valid package name

// Version is the canonical project version.
// All components (CLI, scene host, bridge protocol) share this version
// per the lockstep versioning policy.
const Version = "0.2.0"

// ProtocolVersion is the host bridge protocol version. It is validated
// against the peer during the hello handshake and must stay in
// lockstep with Version.
const ProtocolVersion = Version
