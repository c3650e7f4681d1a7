// Package toolmgr owns the lifecycle of the external anchore binaries:
// install, version detection and exposure of a runnable binary path.
// Each tool is a plain Descriptor value driving one generic Manager —
// there is no per-tool subclassing.
package toolmgr

// Descriptor identifies one managed external tool.
type Descriptor struct {
	// ID is the tool identifier, also the binary and storage dir name.
	ID string
	// DisplayName is the human-facing name used in prompts and logs.
	DisplayName string
	// Owner and Repo locate the upstream GitHub project.
	Owner string
	Repo  string
	// Description is a short markdown blurb shown in help output.
	Description string
}

// Syft describes the SBOM generator.
var Syft = Descriptor{
	ID:          "syft",
	DisplayName: "Syft",
	Owner:       "anchore",
	Repo:        "syft",
	Description: "A CLI tool for generating a Software Bill of Materials from container images",
}

// Grype describes the vulnerability scanner.
var Grype = Descriptor{
	ID:          "grype",
	DisplayName: "Grype",
	Owner:       "anchore",
	Repo:        "grype",
	Description: "A vulnerability scanner for container images and filesystems",
}

// Known lists every managed tool.
var Known = []Descriptor{Syft, Grype}

// Lookup returns the descriptor for a tool id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range Known {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
