package xaiepy

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// lookPath is exec.LookPath, replaceable in tests.
var lookPath = exec.LookPath

// ToolRequirement describes a build tool dependency.
//
// This structure allows the orchestrator to declare:
//   - Required tools (must be available)
//   - Optional tools (used when present, silently skipped otherwise)
//   - Alternative tools (any one of several names satisfies the requirement)
//
// # Examples
//
// Required tool:
//
//	ToolRequirement{
//	    Name: "cmake",
//	    Purpose: "CMake build system",
//	}
//
// Optional tool with an alternative name:
//
//	ToolRequirement{
//	    Name: "ninja",
//	    Alternatives: []string{"ninja-build"},
//	    Optional: true,
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cmake", "ninja").
	Name string

	// Alternatives are other binary names that satisfy this requirement.
	// Fedora, for example, ships ninja as ninja-build.
	Alternatives []string

	// Optional indicates this tool won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

var (
	cmakeRequirement = ToolRequirement{
		Name:    "cmake",
		Purpose: "CMake build system",
	}

	ninjaRequirement = ToolRequirement{
		Name:         "ninja",
		Alternatives: []string{"ninja-build"},
		Optional:     true,
		Purpose:      "Ninja build tool",
	}
)

// RequiredTools returns the tools the orchestration uses.
func RequiredTools() []ToolRequirement {
	return []ToolRequirement{cmakeRequirement, ninjaRequirement}
}

// findTool returns the resolved path of the first name of req found in
// PATH, or "" when none is.
func findTool(req ToolRequirement) string {
	for _, name := range append([]string{req.Name}, req.Alternatives...) {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// CheckRequiredTools verifies all required tools are available.
//
// # Behavior
//
//   - Checks the primary tool name first
//   - If not found, tries each alternative tool in order
//   - Optional tools are checked but don't cause errors
//   - Returns all missing required tools in a single error
//
// # Error Format
//
// Single missing tool:
//
//	cmake (CMake build system) not found in PATH
//
// Multiple missing tools:
//
//	missing required tools: cmake (CMake build system), python3
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		if findTool(req) != "" || req.Optional {
			continue
		}
		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return errors.Newf("%s not found in PATH", missingTools[0])
	}

	return errors.Newf("missing required tools: %s", strings.Join(missingTools, ", "))
}
