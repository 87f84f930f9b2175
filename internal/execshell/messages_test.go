package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
)

func buildGitCommand(workingDirectory string, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: workingDirectory,
		},
	}
}

func TestCommandMessageFormatterStartedMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name:            "fetch_with_prune",
			command:         buildGitCommand("/tmp/repo", "fetch", "--prune", "origin"),
			expectedMessage: "Fetching and pruning origin in /tmp/repo",
		},
		{
			name:            "fetch_without_prune",
			command:         buildGitCommand("/tmp/repo", "fetch", "origin"),
			expectedMessage: "Fetching from origin in /tmp/repo",
		},
		{
			name:            "for_each_ref_listing",
			command:         buildGitCommand("/tmp/repo", "for-each-ref", "--sort=-committerdate", "--format=%(refname)", "refs/heads"),
			expectedMessage: "Listing refs/heads references in /tmp/repo",
		},
		{
			name:            "local_branch_deletion",
			command:         buildGitCommand("/tmp/repo", "branch", "--delete", "--force", "feature/stale"),
			expectedMessage: "Removing local branch feature/stale in /tmp/repo",
		},
		{
			name:            "remote_branch_deletion",
			command:         buildGitCommand("/tmp/repo", "push", "origin", "--delete", "feature/stale"),
			expectedMessage: "Deleting remote branch feature/stale from origin in /tmp/repo",
		},
		{
			name:            "unrecognized_subcommand_uses_generic_description",
			command:         buildGitCommand("/tmp/repo", "status"),
			expectedMessage: "Running git status (in /tmp/repo)",
		},
		{
			name:            "missing_working_directory_falls_back",
			command:         buildGitCommand("", "fetch", "--prune", "origin"),
			expectedMessage: "Fetching and pruning origin in current directory",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	fetchCommand := buildGitCommand("/tmp/repo", "fetch", "--prune", "origin")
	failureMessage := formatter.BuildFailureMessage(fetchCommand, execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: could not read"})
	require.Equal(testInstance, "Failed to fetch and prune origin in /tmp/repo (exit code 128: fatal: could not read)", failureMessage)

	executionFailureMessage := formatter.BuildExecutionFailureMessage(fetchCommand, errors.New("binary missing"))
	require.Equal(testInstance, "Unable to fetch and prune origin in /tmp/repo: binary missing", executionFailureMessage)
}

func TestCommandMessageFormatterSuccessMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	deleteCommand := buildGitCommand("/tmp/repo", "branch", "--delete", "--force", "feature/stale")
	require.Equal(testInstance, "Removed local branch feature/stale in /tmp/repo", formatter.BuildSuccessMessage(deleteCommand))

	pushCommand := buildGitCommand("/tmp/repo", "push", "origin", "--delete", "feature/stale")
	require.Equal(testInstance, "Deleted remote branch feature/stale from origin in /tmp/repo", formatter.BuildSuccessMessage(pushCommand))
}

func TestCommandMessageFormatterBranchWithoutDeleteFlagIsGeneric(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	listCommand := buildGitCommand("/tmp/repo", "branch", "--list")
	require.Equal(testInstance, "Running git branch --list (in /tmp/repo)", formatter.BuildStartedMessage(listCommand))
}
