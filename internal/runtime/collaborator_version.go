package runtime

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ProtocolVersion is the ABI contract version for the RootScanner and
// LargeObjectSpace collaborator interfaces in this package (the call
// signatures and ordering guarantees documented on each). It follows
// semver: a collaborator built against 1.x is expected to keep working
// against any 1.y release of this package.
const ProtocolVersion = "1.0.0"

// VersionedCollaborator is an optional interface a RootScanner or
// LargeObjectSpace implementation may satisfy to declare which protocol
// version it was built against. Collaborators that don't implement it are
// assumed compatible — this exists for embedders that vendor the core and
// the collaborator independently and want an early, explicit failure
// instead of a subtle mismatch surfacing as a miscounted reference.
type VersionedCollaborator interface {
	ProtocolVersion() string
}

// checkCollaboratorVersion verifies that a collaborator's declared protocol
// version satisfies the same-major-version constraint against this
// package's ProtocolVersion. Collaborators not implementing
// VersionedCollaborator are skipped.
func checkCollaboratorVersion(label string, c interface{}) error {
	vc, ok := c.(VersionedCollaborator)
	if !ok {
		return nil
	}

	declared, err := semver.NewVersion(vc.ProtocolVersion())
	if err != nil {
		return newHeapError(ErrorInvalidConfig, "%s: invalid protocol version %q: %v", label, vc.ProtocolVersion(), err)
	}

	core, err := semver.NewVersion(ProtocolVersion)
	if err != nil {
		return fmt.Errorf("runtime: internal ProtocolVersion %q does not parse: %w", ProtocolVersion, err)
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d.0.0", core.Major()))
	if err != nil {
		return fmt.Errorf("runtime: building protocol constraint: %w", err)
	}

	if !constraint.Check(declared) {
		return newHeapError(ErrorInvalidConfig, "%s: protocol version %s is incompatible with core version %s", label, declared, core)
	}

	return nil
}
