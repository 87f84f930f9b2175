package gitrefs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
	"github.com/ItsRohitSingh/git-branch-delete/internal/gitrefs"
)

const (
	sourceRepositoryPathConstant   = "/tmp/repository"
	sourceRemoteNameConstant       = "origin"
	sourceBranchNameConstant       = "feature/login"
	terminalPromptEnvironmentName  = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledConstant = "0"
)

type recordingExecutor struct {
	standardOutput string
	executionError error
	details        []execshell.CommandDetails
}

func (executor *recordingExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.details = append(executor.details, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func TestSourceConstructorsValidateDependencies(testInstance *testing.T) {
	_, localExecutorError := gitrefs.NewLocalReferenceSource(nil, sourceRemoteNameConstant)
	require.ErrorIs(testInstance, localExecutorError, gitrefs.ErrGitExecutorNotConfigured)

	_, localRemoteError := gitrefs.NewLocalReferenceSource(&recordingExecutor{}, "  ")
	require.ErrorIs(testInstance, localRemoteError, gitrefs.ErrRemoteNameRequired)

	_, remoteExecutorError := gitrefs.NewRemoteReferenceSource(nil, sourceRemoteNameConstant)
	require.ErrorIs(testInstance, remoteExecutorError, gitrefs.ErrGitExecutorNotConfigured)

	_, remoteRemoteError := gitrefs.NewRemoteReferenceSource(&recordingExecutor{}, "")
	require.ErrorIs(testInstance, remoteRemoteError, gitrefs.ErrRemoteNameRequired)
}

func TestFetchPruneDisablesTerminalPrompts(testInstance *testing.T) {
	executor := &recordingExecutor{}
	source, sourceError := gitrefs.NewLocalReferenceSource(executor, sourceRemoteNameConstant)
	require.NoError(testInstance, sourceError)

	require.NoError(testInstance, source.FetchPrune(context.Background(), sourceRepositoryPathConstant))

	require.Len(testInstance, executor.details, 1)
	require.Equal(testInstance, []string{"fetch", "--prune", sourceRemoteNameConstant}, executor.details[0].Arguments)
	require.Equal(testInstance, sourceRepositoryPathConstant, executor.details[0].WorkingDirectory)
	require.Equal(testInstance, terminalPromptDisabledConstant, executor.details[0].EnvironmentVariables[terminalPromptEnvironmentName])
}

func TestFetchPrunePropagatesExecutionFailure(testInstance *testing.T) {
	fetchFailure := errors.New("remote unreachable")
	executor := &recordingExecutor{executionError: fetchFailure}
	source, sourceError := gitrefs.NewRemoteReferenceSource(executor, sourceRemoteNameConstant)
	require.NoError(testInstance, sourceError)

	require.ErrorIs(testInstance, source.FetchPrune(context.Background(), sourceRepositoryPathConstant), fetchFailure)
}

func TestListReferencesTargetsScopeNamespace(testInstance *testing.T) {
	testCases := []struct {
		name              string
		buildSource       func(*recordingExecutor) (gitrefs.ReferenceSource, error)
		expectedNamespace string
	}{
		{
			name: "local_source_lists_heads",
			buildSource: func(executor *recordingExecutor) (gitrefs.ReferenceSource, error) {
				return gitrefs.NewLocalReferenceSource(executor, sourceRemoteNameConstant)
			},
			expectedNamespace: "refs/heads",
		},
		{
			name: "remote_source_lists_remote_tracking_refs",
			buildSource: func(executor *recordingExecutor) (gitrefs.ReferenceSource, error) {
				return gitrefs.NewRemoteReferenceSource(executor, sourceRemoteNameConstant)
			},
			expectedNamespace: "refs/remotes/" + sourceRemoteNameConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor := &recordingExecutor{}
			source, sourceError := testCase.buildSource(executor)
			require.NoError(subtest, sourceError)

			_, listError := source.ListReferences(context.Background(), sourceRepositoryPathConstant)
			require.NoError(subtest, listError)

			require.Len(subtest, executor.details, 1)
			arguments := executor.details[0].Arguments
			require.Equal(subtest, "for-each-ref", arguments[0])
			require.Equal(subtest, "--sort=-committerdate", arguments[1])
			require.Equal(subtest, testCase.expectedNamespace, arguments[len(arguments)-1])
		})
	}
}

func TestListReferencesParsesOutput(testInstance *testing.T) {
	executor := &recordingExecutor{
		standardOutput: sourceBranchNameConstant + "|refs/heads/" + sourceBranchNameConstant + "|1700000000\n" +
			"\n" +
			"missing-timestamp|refs/heads/missing-timestamp|not-a-number\n" +
			"too-few-fields\n",
	}
	source, sourceError := gitrefs.NewLocalReferenceSource(executor, sourceRemoteNameConstant)
	require.NoError(testInstance, sourceError)

	listing, listError := source.ListReferences(context.Background(), sourceRepositoryPathConstant)
	require.NoError(testInstance, listError)

	require.Len(testInstance, listing.References, 1)
	require.Equal(testInstance, sourceBranchNameConstant, listing.References[0].Name)
	require.Equal(testInstance, "refs/heads/"+sourceBranchNameConstant, listing.References[0].FullReference)
	require.Equal(testInstance, time.Unix(1700000000, 0).UTC(), listing.References[0].CommittedAt)

	require.Len(testInstance, listing.MalformedLines, 2)
	require.Contains(testInstance, listing.MalformedLines, "too-few-fields")
}
