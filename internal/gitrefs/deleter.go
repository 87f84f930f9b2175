package gitrefs

import (
	"context"
	"errors"
	"strings"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/shared"
)

const (
	branchNameRequiredMessageConstant = "branch name must be provided"
	gitBranchSubcommandConstant       = "branch"
	gitPushSubcommandConstant         = "push"
	gitDeleteFlagConstant             = "--delete"
	gitForceFlagConstant              = "--force"
)

// ErrBranchNameRequired indicates an empty branch name was supplied for deletion.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// BranchDeleter removes a single branch from a repository.
type BranchDeleter interface {
	DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error
}

// LocalBranchDeleter removes local branches via git branch --delete --force.
type LocalBranchDeleter struct {
	executor shared.GitExecutor
}

// NewLocalBranchDeleter constructs a LocalBranchDeleter over the provided executor.
func NewLocalBranchDeleter(executor shared.GitExecutor) (*LocalBranchDeleter, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &LocalBranchDeleter{executor: executor}, nil
}

// DeleteBranch removes the named local branch.
func (deleter *LocalBranchDeleter) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	_, executionError := deleter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitBranchSubcommandConstant, gitDeleteFlagConstant, gitForceFlagConstant, trimmedBranchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// RemoteBranchDeleter removes remote branches via git push --delete.
type RemoteBranchDeleter struct {
	executor   shared.GitExecutor
	remoteName string
}

// NewRemoteBranchDeleter constructs a RemoteBranchDeleter over the provided executor.
func NewRemoteBranchDeleter(executor shared.GitExecutor, remoteName string) (*RemoteBranchDeleter, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &RemoteBranchDeleter{executor: executor, remoteName: trimmedRemoteName}, nil
}

// DeleteBranch removes the named branch from the configured remote.
func (deleter *RemoteBranchDeleter) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	_, executionError := deleter.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitPushSubcommandConstant, deleter.remoteName, gitDeleteFlagConstant, trimmedBranchName},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
	return executionError
}
