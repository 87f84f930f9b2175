// Package rootutils resolves repository root directories from flags,
// positional arguments, and configuration defaults.
package rootutils

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	pathutils "github.com/ItsRohitSingh/git-branch-delete/internal/utils/path"
)

const (
	// RootsFlagName identifies the repeatable repository roots flag.
	RootsFlagName = "roots"

	missingRootsMessageConstant = "no repository roots provided; specify --roots or configure defaults"
)

// ErrNoRepositoryRoots indicates no roots were supplied by flags, arguments, or configuration.
var ErrNoRepositoryRoots = errors.New(missingRootsMessageConstant)

var rootsHomeDirectoryExpander = pathutils.NewHomeExpander()

// Resolve selects repository roots, preferring the --roots flag, then positional
// arguments, then configured defaults.
func Resolve(command *cobra.Command, arguments []string, configuredRoots []string) ([]string, error) {
	if command != nil && command.Flags().Changed(RootsFlagName) {
		flagRoots, _ := command.Flags().GetStringSlice(RootsFlagName)
		return sanitizeResolvedRoots(flagRoots)
	}

	if len(arguments) > 0 {
		return sanitizeResolvedRoots(arguments)
	}

	return sanitizeResolvedRoots(configuredRoots)
}

func sanitizeResolvedRoots(candidateRoots []string) ([]string, error) {
	sanitizedRoots := make([]string, 0, len(candidateRoots))
	seenRoots := make(map[string]struct{}, len(candidateRoots))
	for _, rootCandidate := range candidateRoots {
		trimmedRoot := strings.TrimSpace(rootCandidate)
		if len(trimmedRoot) == 0 {
			continue
		}
		expandedRoot := rootsHomeDirectoryExpander.Expand(trimmedRoot)
		if _, alreadySeen := seenRoots[expandedRoot]; alreadySeen {
			continue
		}
		seenRoots[expandedRoot] = struct{}{}
		sanitizedRoots = append(sanitizedRoots, expandedRoot)
	}

	if len(sanitizedRoots) == 0 {
		return nil, ErrNoRepositoryRoots
	}

	return sanitizedRoots, nil
}
