// Package dependencies resolves default collaborator implementations for commands.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/discovery"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/shared"
	"github.com/ItsRohitSingh/git-branch-delete/internal/ui"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		shellExecutor.RegisterCommandObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}
