package prune_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
	"github.com/ItsRohitSingh/git-branch-delete/internal/prune"
	flagutils "github.com/ItsRohitSingh/git-branch-delete/internal/utils/flags"
)

const (
	commandRepositoryPathConstant       = "/tmp/repository-one"
	commandSecondRepositoryPathConstant = "/tmp/repository-two"
	commandRemoteNameConstant           = "origin"
	commandStaleBranchNameConstant      = "feature/stale"
	commandDryRunFlagConstant           = "--dry-run"
	commandDryRunDisableValueConstant   = "no"
	commandAgeFlagConstant              = "--age"
	commandFetchSubcommandConstant      = "fetch"
	commandForEachRefSubcommandConstant = "for-each-ref"
	commandBranchSubcommandConstant     = "branch"
	commandPushSubcommandConstant       = "push"
	commandFetchFailureMessageConstant  = "could not read from remote repository"
)

var commandReferenceInstant = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type recordedGitCall struct {
	workingDirectory string
	arguments        []string
}

type fakeGitExecutor struct {
	referenceOutput   string
	fetchFailurePaths map[string]error
	calls             []recordedGitCall
}

func (executor *fakeGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.calls = append(executor.calls, recordedGitCall{
		workingDirectory: details.WorkingDirectory,
		arguments:        append([]string{}, details.Arguments...),
	})

	if len(details.Arguments) > 0 && details.Arguments[0] == commandFetchSubcommandConstant {
		if fetchError, shouldFail := executor.fetchFailurePaths[details.WorkingDirectory]; shouldFail {
			return execshell.ExecutionResult{}, fetchError
		}
	}

	if len(details.Arguments) > 0 && details.Arguments[0] == commandForEachRefSubcommandConstant {
		return execshell.ExecutionResult{StandardOutput: executor.referenceOutput}, nil
	}

	return execshell.ExecutionResult{}, nil
}

func (executor *fakeGitExecutor) callsWithSubcommand(subcommand string) []recordedGitCall {
	var matching []recordedGitCall
	for _, call := range executor.calls {
		if len(call.arguments) > 0 && call.arguments[0] == subcommand {
			matching = append(matching, call)
		}
	}
	return matching
}

type stubRepositoryDiscoverer struct {
	repositories  []string
	receivedRoots []string
}

func (discoverer *stubRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	discoverer.receivedRoots = append([]string{}, roots...)
	return append([]string{}, discoverer.repositories...), nil
}

func buildReferenceOutput(scope prune.BranchScope, branchName string, committedDaysAgo int) string {
	committedAt := commandReferenceInstant.Add(-time.Duration(committedDaysAgo) * 24 * time.Hour)
	shortName := branchName
	fullReference := "refs/heads/" + branchName
	if scope == prune.BranchScopeRemote {
		shortName = commandRemoteNameConstant + "/" + branchName
		fullReference = "refs/remotes/" + commandRemoteNameConstant + "/" + branchName
	}
	return fmt.Sprintf("%s|%s|%d\n", shortName, fullReference, committedAt.Unix())
}

func runPruneCommand(testInstance *testing.T, builder *prune.CommandBuilder, arguments []string) error {
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	command.SetArgs(normalizedArguments)
	return command.ExecuteContext(context.Background())
}

func TestCommandDryRunIsDefault(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeLocal, commandStaleBranchNameConstant, 120),
	}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}
	reporter := &recordingReporter{}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             reporter,
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, nil))

	require.Empty(testInstance, executor.callsWithSubcommand(commandBranchSubcommandConstant))
	require.Contains(testInstance, reporter.builder.String(), commandStaleBranchNameConstant)
	require.Equal(testInstance, []string{"."}, discoverer.receivedRoots)
}

func TestCommandDisablingDryRunDeletesLocalBranches(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeLocal, commandStaleBranchNameConstant, 120),
	}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, []string{commandDryRunFlagConstant, commandDryRunDisableValueConstant}))

	deleteCalls := executor.callsWithSubcommand(commandBranchSubcommandConstant)
	require.Len(testInstance, deleteCalls, 1)
	require.Equal(testInstance, []string{commandBranchSubcommandConstant, "--delete", "--force", commandStaleBranchNameConstant}, deleteCalls[0].arguments)
	require.Equal(testInstance, commandRepositoryPathConstant, deleteCalls[0].workingDirectory)
}

func TestCommandRemoteScopeDeletesViaPush(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeRemote, commandStaleBranchNameConstant, 120),
	}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeRemote,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, []string{commandDryRunFlagConstant, commandDryRunDisableValueConstant}))

	pushCalls := executor.callsWithSubcommand(commandPushSubcommandConstant)
	require.Len(testInstance, pushCalls, 1)
	require.Equal(testInstance, []string{commandPushSubcommandConstant, commandRemoteNameConstant, "--delete", commandStaleBranchNameConstant}, pushCalls[0].arguments)
}

func TestCommandRemoteScopeProtectsHeadAndRemoteName(testInstance *testing.T) {
	referenceOutput := strings.Join([]string{
		strings.TrimSuffix(buildReferenceOutput(prune.BranchScopeRemote, "HEAD", 400), "\n"),
		strings.TrimSuffix(buildReferenceOutput(prune.BranchScopeRemote, "main", 400), "\n"),
		strings.TrimSuffix(buildReferenceOutput(prune.BranchScopeRemote, commandStaleBranchNameConstant, 120), "\n"),
	}, "\n") + "\n"

	executor := &fakeGitExecutor{referenceOutput: referenceOutput}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeRemote,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, []string{commandDryRunFlagConstant, commandDryRunDisableValueConstant}))

	pushCalls := executor.callsWithSubcommand(commandPushSubcommandConstant)
	require.Len(testInstance, pushCalls, 1)
	require.Equal(testInstance, commandStaleBranchNameConstant, pushCalls[0].arguments[len(pushCalls[0].arguments)-1])
}

func TestCommandRejectsNegativeAgeThreshold(testInstance *testing.T) {
	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          &fakeGitExecutor{},
		RepositoryDiscoverer: &stubRepositoryDiscoverer{},
		Reporter:             &recordingReporter{},
	}

	executionError := runPruneCommand(testInstance, builder, []string{commandAgeFlagConstant, "-5"})
	require.ErrorIs(testInstance, executionError, prune.ErrNegativeAgeThreshold)
}

func TestCommandFlagsOverrideConfiguration(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeLocal, commandStaleBranchNameConstant, 45),
	}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
		ConfigurationProvider: func() prune.CommandConfiguration {
			configuration := prune.DefaultCommandConfiguration()
			configuration.AgeThresholdDays = 90
			configuration.DryRun = true
			configuration.RepositoryRoots = []string{"/tmp/configured-root"}
			return configuration
		},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, []string{
		commandAgeFlagConstant, "30",
		commandDryRunFlagConstant, commandDryRunDisableValueConstant,
	}))

	deleteCalls := executor.callsWithSubcommand(commandBranchSubcommandConstant)
	require.Len(testInstance, deleteCalls, 1)
	require.Equal(testInstance, []string{"/tmp/configured-root"}, discoverer.receivedRoots)
}

func TestCommandContinuesAcrossRepositoriesAfterFetchFailure(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeLocal, commandStaleBranchNameConstant, 120),
		fetchFailurePaths: map[string]error{
			commandRepositoryPathConstant: errors.New(commandFetchFailureMessageConstant),
		},
	}
	discoverer := &stubRepositoryDiscoverer{
		repositories: []string{commandRepositoryPathConstant, commandSecondRepositoryPathConstant},
	}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	executionError := runPruneCommand(testInstance, builder, []string{commandDryRunFlagConstant, commandDryRunDisableValueConstant})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), commandFetchFailureMessageConstant)

	deleteCalls := executor.callsWithSubcommand(commandBranchSubcommandConstant)
	require.Len(testInstance, deleteCalls, 1)
	require.Equal(testInstance, commandSecondRepositoryPathConstant, deleteCalls[0].workingDirectory)
}

func TestCommandExcludeFlagProtectsBranch(testInstance *testing.T) {
	executor := &fakeGitExecutor{
		referenceOutput: buildReferenceOutput(prune.BranchScopeLocal, commandStaleBranchNameConstant, 120),
	}
	discoverer := &stubRepositoryDiscoverer{repositories: []string{commandRepositoryPathConstant}}

	builder := &prune.CommandBuilder{
		Scope:                prune.BranchScopeLocal,
		LoggerProvider:       zap.NewNop,
		GitExecutor:          executor,
		RepositoryDiscoverer: discoverer,
		Reporter:             &recordingReporter{},
		Clock:                fixedClock{instant: commandReferenceInstant},
	}

	require.NoError(testInstance, runPruneCommand(testInstance, builder, []string{
		commandDryRunFlagConstant, commandDryRunDisableValueConstant,
		"--exclude", commandStaleBranchNameConstant,
	}))

	require.Empty(testInstance, executor.callsWithSubcommand(commandBranchSubcommandConstant))
}
