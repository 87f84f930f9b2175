package prune

import (
	"strings"

	pathutils "github.com/ItsRohitSingh/git-branch-delete/internal/utils/path"
)

const (
	configurationRemoteKeyConstant           = "remote"
	configurationAgeDaysKeyConstant          = "age_days"
	configurationDryRunKeyConstant           = "dry_run"
	configurationExcludedBranchesKeyConstant = "excluded_branches"
	configurationRootsKeyConstant            = "roots"
	configurationKeySeparatorConstant        = "."

	defaultRemoteNameConstant       = "origin"
	defaultAgeThresholdDaysConstant = 90
	defaultDryRunConstant           = true
	defaultRepositoryRootConstant   = "."
)

var pruneConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures configuration values for branch pruning commands.
type CommandConfiguration struct {
	RemoteName       string   `mapstructure:"remote"`
	AgeThresholdDays int      `mapstructure:"age_days"`
	DryRun           bool     `mapstructure:"dry_run"`
	ExcludedBranches []string `mapstructure:"excluded_branches"`
	RepositoryRoots  []string `mapstructure:"roots"`
}

// DefaultCommandConfiguration provides baseline configuration values for branch pruning.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:       defaultRemoteNameConstant,
		AgeThresholdDays: defaultAgeThresholdDaysConstant,
		DryRun:           defaultDryRunConstant,
		ExcludedBranches: nil,
		RepositoryRoots:  []string{defaultRepositoryRootConstant},
	}
}

// DefaultConfigurationValues produces Viper defaults for branch pruning commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRemoteKeyConstant:           defaults.RemoteName,
		rootKey + configurationKeySeparatorConstant + configurationAgeDaysKeyConstant:          defaults.AgeThresholdDays,
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:           defaults.DryRun,
		rootKey + configurationKeySeparatorConstant + configurationExcludedBranchesKeyConstant: defaults.ExcludedBranches,
		rootKey + configurationKeySeparatorConstant + configurationRootsKeyConstant:            defaults.RepositoryRoots,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.ExcludedBranches = trimBranchNames(configuration.ExcludedBranches)
	sanitized.RepositoryRoots = trimRoots(configuration.RepositoryRoots)

	return sanitized
}

func trimBranchNames(raw []string) []string {
	trimmedNames := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		trimmedNames = append(trimmedNames, trimmed)
	}
	if len(trimmedNames) == 0 {
		return nil
	}
	return trimmedNames
}

func trimRoots(raw []string) []string {
	trimmedRoots := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		expandedRoot := pruneConfigurationHomeDirectoryExpander.Expand(trimmed)
		trimmedRoots = append(trimmedRoots, expandedRoot)
	}
	if len(trimmedRoots) == 0 {
		return nil
	}
	return trimmedRoots
}
