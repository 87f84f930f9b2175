package prune

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ItsRohitSingh/git-branch-delete/internal/gitrefs"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/dependencies"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/shared"
	flagutils "github.com/ItsRohitSingh/git-branch-delete/internal/utils/flags"
	rootutils "github.com/ItsRohitSingh/git-branch-delete/internal/utils/roots"
)

const (
	localCommandUseConstant               = "local"
	localCommandShortDescriptionConstant  = "Delete stale local branches"
	localCommandLongDescriptionConstant   = "local removes local branches whose last commit is older than the age threshold, skipping protected branch names. Runs as a preview unless --dry-run=no is given."
	remoteCommandUseConstant              = "remote"
	remoteCommandShortDescriptionConstant = "Delete stale remote branches"
	remoteCommandLongDescriptionConstant  = "remote removes branches on the configured remote whose last commit is older than the age threshold, skipping protected branch names. Runs as a preview unless --dry-run=no is given."

	commandExecutionErrorTemplateConstant = "branch pruning failed: %w"
	invalidAgeThresholdTemplateConstant   = "invalid --%s value %d: %w"

	flagDryRunNameConstant          = "dry-run"
	flagDryRunUsageConstant         = "Preview deletions without removing branches"
	flagAgeNameConstant             = "age"
	flagAgeUsageConstant            = "Minimum age in days before a branch is considered stale"
	flagRemoteNameConstant          = "remote"
	flagRemoteUsageConstant         = "Name of the remote to fetch from and prune"
	flagExcludeNameConstant         = "exclude"
	flagExcludeUsageConstant        = "Additional branch name to protect from deletion (repeatable)"
	flagRootsUsageConstant          = "Directories to scan for Git repositories"
	remoteHeadReferenceNameConstant = "HEAD"

	logMessageRepositoryDiscoveryFailedConstant = "Repository discovery failed"
	logMessageRepositoryPruneFailedConstant     = "Branch pruning failed for repository"
	repositoryDiscoveryErrorTemplateConstant    = "repository discovery failed: %w"
	logFieldRepositoryRootsConstant             = "roots"
	logFieldRepositoryPathConstant              = "repository"
)

// defaultProtectedBranchNames are never deleted regardless of age.
var defaultProtectedBranchNames = []string{"main", "master", "develop", "test", "release", "production"}

// BranchScope selects which branch namespace a command operates on.
type BranchScope string

const (
	// BranchScopeLocal targets refs/heads.
	BranchScopeLocal BranchScope = "local"
	// BranchScopeRemote targets refs/remotes of the configured remote.
	BranchScopeRemote BranchScope = "remote"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type commandOptions struct {
	remoteName       string
	ageThresholdDays int
	dryRun           bool
	excludedNames    []string
	repositoryRoots  []string
}

// CommandBuilder assembles a Cobra command pruning one branch scope.
type CommandBuilder struct {
	Scope                        BranchScope
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	RepositoryDiscoverer         shared.RepositoryDiscoverer
	Reporter                     shared.Reporter
	Clock                        shared.Clock
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration

	dryRunFlagValue bool
}

// Build constructs the pruning command for the builder's scope.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	useName := localCommandUseConstant
	shortDescription := localCommandShortDescriptionConstant
	longDescription := localCommandLongDescriptionConstant
	if builder.Scope == BranchScopeRemote {
		useName = remoteCommandUseConstant
		shortDescription = remoteCommandShortDescriptionConstant
		longDescription = remoteCommandLongDescriptionConstant
	}

	command := &cobra.Command{
		Use:           useName,
		Short:         shortDescription,
		Long:          longDescription,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.run,
	}

	defaults := DefaultCommandConfiguration()
	flagutils.AddToggleFlag(command.Flags(), &builder.dryRunFlagValue, flagDryRunNameConstant, defaults.DryRun, flagDryRunUsageConstant)
	command.Flags().Int(flagAgeNameConstant, defaults.AgeThresholdDays, flagAgeUsageConstant)
	command.Flags().String(flagRemoteNameConstant, defaults.RemoteName, flagRemoteUsageConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeUsageConstant)
	command.Flags().StringSlice(rootutils.RootsFlagName, defaults.RepositoryRoots, flagRootsUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	policy, policyError := NewPolicy(options.ageThresholdDays, builder.policyRemoteName(options.remoteName), options.excludedNames)
	if policyError != nil {
		return fmt.Errorf(invalidAgeThresholdTemplateConstant, flagAgeNameConstant, options.ageThresholdDays, policyError)
	}

	logger := builder.resolveLogger()

	executor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return executorError
	}

	referenceSource, branchDeleter, collaboratorError := builder.resolveCollaborators(executor, options.remoteName)
	if collaboratorError != nil {
		return collaboratorError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:          logger,
		ReferenceSource: referenceSource,
		BranchDeleter:   branchDeleter,
		Reporter:        builder.Reporter,
		Clock:           builder.Clock,
	})
	if serviceError != nil {
		return serviceError
	}

	repositoryDiscoverer := dependencies.ResolveRepositoryDiscoverer(builder.RepositoryDiscoverer)
	repositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(options.repositoryRoots)
	if discoveryError != nil {
		logger.Error(
			logMessageRepositoryDiscoveryFailedConstant,
			zap.Strings(logFieldRepositoryRootsConstant, options.repositoryRoots),
			zap.Error(discoveryError),
		)
		return fmt.Errorf(repositoryDiscoveryErrorTemplateConstant, discoveryError)
	}

	var pruneErrors []error

	for _, repositoryPath := range repositories {
		normalizedRepositoryPath := filepath.Clean(repositoryPath)

		_, pruneError := service.Prune(command.Context(), Options{
			RepositoryPath: normalizedRepositoryPath,
			Policy:         policy,
			DryRun:         options.dryRun,
		})
		if pruneError != nil {
			if errors.Is(pruneError, context.Canceled) || errors.Is(pruneError, context.DeadlineExceeded) {
				return pruneError
			}
			wrappedError := fmt.Errorf(commandExecutionErrorTemplateConstant, pruneError)
			logger.Warn(
				logMessageRepositoryPruneFailedConstant,
				zap.String(logFieldRepositoryPathConstant, normalizedRepositoryPath),
				zap.Error(wrappedError),
			)
			pruneErrors = append(pruneErrors, wrappedError)
			continue
		}
	}

	if len(pruneErrors) > 0 {
		return errors.Join(pruneErrors...)
	}

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	remoteName := configuration.RemoteName
	if command.Flags().Changed(flagRemoteNameConstant) {
		flagValue, _ := command.Flags().GetString(flagRemoteNameConstant)
		remoteName = strings.TrimSpace(flagValue)
	}
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	ageThresholdDays := configuration.AgeThresholdDays
	if command.Flags().Changed(flagAgeNameConstant) {
		ageThresholdDays, _ = command.Flags().GetInt(flagAgeNameConstant)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(flagDryRunNameConstant) {
		dryRun = builder.dryRunFlagValue
	}

	excludedNames := builder.protectedBranchNames(remoteName)
	excludedNames = append(excludedNames, configuration.ExcludedBranches...)
	if command.Flags().Changed(flagExcludeNameConstant) {
		flagExcludes, _ := command.Flags().GetStringSlice(flagExcludeNameConstant)
		excludedNames = append(excludedNames, flagExcludes...)
	}

	repositoryRoots, rootsError := rootutils.Resolve(command, arguments, configuration.RepositoryRoots)
	if rootsError != nil {
		return commandOptions{}, rootsError
	}

	return commandOptions{
		remoteName:       remoteName,
		ageThresholdDays: ageThresholdDays,
		dryRun:           dryRun,
		excludedNames:    excludedNames,
		repositoryRoots:  repositoryRoots,
	}, nil
}

// protectedBranchNames returns the built-in exclusions for the builder's
// scope. Remote scopes additionally protect the symbolic HEAD entry and the
// remote's own name.
func (builder *CommandBuilder) protectedBranchNames(remoteName string) []string {
	protectedNames := append([]string{}, defaultProtectedBranchNames...)
	if builder.Scope == BranchScopeRemote {
		protectedNames = append(protectedNames, remoteHeadReferenceNameConstant, remoteName)
	}
	return protectedNames
}

// policyRemoteName returns the remote prefix to strip during name
// normalization. Local branch names carry no remote prefix.
func (builder *CommandBuilder) policyRemoteName(remoteName string) string {
	if builder.Scope == BranchScopeRemote {
		return remoteName
	}
	return ""
}

func (builder *CommandBuilder) resolveCollaborators(executor shared.GitExecutor, remoteName string) (gitrefs.ReferenceSource, gitrefs.BranchDeleter, error) {
	if builder.Scope == BranchScopeRemote {
		referenceSource, sourceError := gitrefs.NewRemoteReferenceSource(executor, remoteName)
		if sourceError != nil {
			return nil, nil, sourceError
		}
		branchDeleter, deleterError := gitrefs.NewRemoteBranchDeleter(executor, remoteName)
		if deleterError != nil {
			return nil, nil, deleterError
		}
		return referenceSource, branchDeleter, nil
	}

	referenceSource, sourceError := gitrefs.NewLocalReferenceSource(executor, remoteName)
	if sourceError != nil {
		return nil, nil, sourceError
	}
	branchDeleter, deleterError := gitrefs.NewLocalBranchDeleter(executor)
	if deleterError != nil {
		return nil, nil, deleterError
	}
	return referenceSource, branchDeleter, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
