package gitrefs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ItsRohitSingh/git-branch-delete/internal/gitrefs"
)

const deleterBranchNameConstant = "feature/stale"

func TestDeleterConstructorsValidateDependencies(testInstance *testing.T) {
	_, localExecutorError := gitrefs.NewLocalBranchDeleter(nil)
	require.ErrorIs(testInstance, localExecutorError, gitrefs.ErrGitExecutorNotConfigured)

	_, remoteExecutorError := gitrefs.NewRemoteBranchDeleter(nil, sourceRemoteNameConstant)
	require.ErrorIs(testInstance, remoteExecutorError, gitrefs.ErrGitExecutorNotConfigured)

	_, remoteNameError := gitrefs.NewRemoteBranchDeleter(&recordingExecutor{}, " ")
	require.ErrorIs(testInstance, remoteNameError, gitrefs.ErrRemoteNameRequired)
}

func TestLocalBranchDeleterForcesDeletion(testInstance *testing.T) {
	executor := &recordingExecutor{}
	deleter, deleterError := gitrefs.NewLocalBranchDeleter(executor)
	require.NoError(testInstance, deleterError)

	require.NoError(testInstance, deleter.DeleteBranch(context.Background(), sourceRepositoryPathConstant, deleterBranchNameConstant))

	require.Len(testInstance, executor.details, 1)
	require.Equal(testInstance, []string{"branch", "--delete", "--force", deleterBranchNameConstant}, executor.details[0].Arguments)
	require.Equal(testInstance, sourceRepositoryPathConstant, executor.details[0].WorkingDirectory)
}

func TestRemoteBranchDeleterPushesDeletion(testInstance *testing.T) {
	executor := &recordingExecutor{}
	deleter, deleterError := gitrefs.NewRemoteBranchDeleter(executor, sourceRemoteNameConstant)
	require.NoError(testInstance, deleterError)

	require.NoError(testInstance, deleter.DeleteBranch(context.Background(), sourceRepositoryPathConstant, deleterBranchNameConstant))

	require.Len(testInstance, executor.details, 1)
	require.Equal(testInstance, []string{"push", sourceRemoteNameConstant, "--delete", deleterBranchNameConstant}, executor.details[0].Arguments)
	require.Equal(testInstance, terminalPromptDisabledConstant, executor.details[0].EnvironmentVariables[terminalPromptEnvironmentName])
}

func TestDeletersRejectEmptyBranchNames(testInstance *testing.T) {
	localDeleter, localError := gitrefs.NewLocalBranchDeleter(&recordingExecutor{})
	require.NoError(testInstance, localError)
	require.ErrorIs(testInstance, localDeleter.DeleteBranch(context.Background(), sourceRepositoryPathConstant, "  "), gitrefs.ErrBranchNameRequired)

	remoteDeleter, remoteError := gitrefs.NewRemoteBranchDeleter(&recordingExecutor{}, sourceRemoteNameConstant)
	require.NoError(testInstance, remoteError)
	require.ErrorIs(testInstance, remoteDeleter.DeleteBranch(context.Background(), sourceRepositoryPathConstant, ""), gitrefs.ErrBranchNameRequired)
}
