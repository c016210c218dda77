package runtime

import "testing"

type versionedScanner struct {
	version string
}

func (v versionedScanner) EnumerateRoots(*ImmixSpace) []Object { return nil }
func (v versionedScanner) ProtocolVersion() string             { return v.version }

func TestCheckCollaboratorVersionAcceptsSameMajor(t *testing.T) {
	if err := checkCollaboratorVersion("root scanner", versionedScanner{version: "1.3.0"}); err != nil {
		t.Fatalf("expected 1.3.0 to satisfy ^1.0.0, got error: %v", err)
	}
}

func TestCheckCollaboratorVersionRejectsDifferentMajor(t *testing.T) {
	if err := checkCollaboratorVersion("root scanner", versionedScanner{version: "2.0.0"}); err == nil {
		t.Fatalf("expected 2.0.0 to be rejected against ^1.0.0")
	}
}

func TestCheckCollaboratorVersionSkipsUnversioned(t *testing.T) {
	if err := checkCollaboratorVersion("root scanner", RootScannerFunc(func(*ImmixSpace) []Object { return nil })); err != nil {
		t.Fatalf("expected unversioned collaborator to be accepted, got: %v", err)
	}
}

func TestNewImmixSpaceRejectsIncompatibleScanner(t *testing.T) {
	cfg := DefaultConfig()

	_, err := NewImmixSpace(cfg, 4, nil, versionedScanner{version: "9.9.9"}, nil)
	if err == nil {
		t.Fatalf("expected NewImmixSpace to reject an incompatible scanner protocol version")
	}
}
