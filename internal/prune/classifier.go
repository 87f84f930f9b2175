package prune

import (
	"errors"
	"strings"
	"time"

	"github.com/ItsRohitSingh/git-branch-delete/internal/gitrefs"
)

const (
	negativeAgeThresholdMessageConstant = "age threshold must be zero or greater"
	hoursPerDayConstant                 = 24
	remoteNameSeparatorConstant         = "/"

	classificationExcludedNameConstant = "excluded"
	classificationKeptNameConstant     = "kept"
	classificationStaleNameConstant    = "stale"
	classificationUnknownNameConstant  = "unknown"
)

// ErrNegativeAgeThreshold indicates a negative age threshold was supplied.
var ErrNegativeAgeThreshold = errors.New(negativeAgeThresholdMessageConstant)

// Classification identifies the pruning outcome for a single branch.
type Classification int

const (
	// ClassificationExcluded marks branches protected from deletion by name.
	ClassificationExcluded Classification = iota
	// ClassificationKept marks branches younger than the age threshold.
	ClassificationKept
	// ClassificationStale marks branches older than the age threshold.
	ClassificationStale
)

// String returns the lowercase classification name.
func (classification Classification) String() string {
	switch classification {
	case ClassificationExcluded:
		return classificationExcludedNameConstant
	case ClassificationKept:
		return classificationKeptNameConstant
	case ClassificationStale:
		return classificationStaleNameConstant
	default:
		return classificationUnknownNameConstant
	}
}

// Policy captures the rules used to classify branches.
type Policy struct {
	ageThreshold time.Duration
	remoteName   string
	excluded     map[string]struct{}
}

// NewPolicy validates the threshold and builds a classification policy. The
// remote name is used to normalize remote-tracking branch names and may be
// empty for local branch scopes.
func NewPolicy(ageThresholdDays int, remoteName string, excludedNames []string) (Policy, error) {
	if ageThresholdDays < 0 {
		return Policy{}, ErrNegativeAgeThreshold
	}

	excluded := make(map[string]struct{}, len(excludedNames))
	for _, excludedName := range excludedNames {
		trimmedName := strings.TrimSpace(excludedName)
		if len(trimmedName) == 0 {
			continue
		}
		excluded[trimmedName] = struct{}{}
	}

	return Policy{
		ageThreshold: time.Duration(ageThresholdDays) * hoursPerDayConstant * time.Hour,
		remoteName:   strings.TrimSpace(remoteName),
		excluded:     excluded,
	}, nil
}

// ClassifiedBranch pairs a branch reference with its pruning outcome.
type ClassifiedBranch struct {
	Reference      gitrefs.BranchReference
	NormalizedName string
	Classification Classification
}

// Classify determines the pruning outcome for a branch at the given instant.
// Exclusions match the normalized branch name or the full reference exactly.
// A branch is stale only when its last commit is strictly older than the
// threshold cutoff.
func (policy Policy) Classify(reference gitrefs.BranchReference, now time.Time) ClassifiedBranch {
	normalizedName := policy.NormalizeBranchName(reference.Name)

	classified := ClassifiedBranch{
		Reference:      reference,
		NormalizedName: normalizedName,
	}

	if policy.isExcluded(normalizedName, reference.FullReference) {
		classified.Classification = ClassificationExcluded
		return classified
	}

	cutoff := now.Add(-policy.ageThreshold)
	if reference.CommittedAt.Before(cutoff) {
		classified.Classification = ClassificationStale
		return classified
	}

	classified.Classification = ClassificationKept
	return classified
}

// NormalizeBranchName strips the configured remote prefix from a branch name.
func (policy Policy) NormalizeBranchName(branchName string) string {
	trimmedName := strings.TrimSpace(branchName)
	if len(policy.remoteName) == 0 {
		return trimmedName
	}

	remotePrefix := policy.remoteName + remoteNameSeparatorConstant
	return strings.TrimPrefix(trimmedName, remotePrefix)
}

func (policy Policy) isExcluded(normalizedName string, fullReference string) bool {
	if _, excluded := policy.excluded[normalizedName]; excluded {
		return true
	}
	if len(fullReference) == 0 {
		return false
	}
	_, excluded := policy.excluded[fullReference]
	return excluded
}
