package gitrefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ItsRohitSingh/git-branch-delete/internal/execshell"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/shared"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	remoteNameRequiredMessageConstant           = "remote name must be provided"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchPruneFlagConstant                   = "--prune"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitCommitterDateSortFlagConstant            = "--sort=-committerdate"
	gitReferenceFormatFlagConstant              = "--format=%(refname:short)|%(refname)|%(committerdate:unix)"
	localHeadsNamespaceConstant                 = "refs/heads"
	remoteTrackingNamespaceTemplateConstant     = "refs/remotes/%s"
	referenceFieldSeparatorConstant             = "|"
	referenceFieldCountConstant                 = 3
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRemoteNameRequired indicates the remote name option was empty.
var ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)

// BranchReference describes a branch ref together with its last commit instant.
type BranchReference struct {
	Name          string
	FullReference string
	CommittedAt   time.Time
}

// ReferenceListing carries parsed references plus any lines that could not be parsed.
type ReferenceListing struct {
	References     []BranchReference
	MalformedLines []string
}

// ReferenceSource lists branch references with timestamps for one ref namespace.
type ReferenceSource interface {
	// FetchPrune synchronizes remote tracking state before listing.
	FetchPrune(executionContext context.Context, repositoryPath string) error
	// ListReferences returns references ordered by commit time descending.
	ListReferences(executionContext context.Context, repositoryPath string) (ReferenceListing, error)
}

// LocalReferenceSource lists local heads.
type LocalReferenceSource struct {
	executor   shared.GitExecutor
	remoteName string
}

// NewLocalReferenceSource constructs a LocalReferenceSource over the provided executor.
func NewLocalReferenceSource(executor shared.GitExecutor, remoteName string) (*LocalReferenceSource, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &LocalReferenceSource{executor: executor, remoteName: trimmedRemoteName}, nil
}

// FetchPrune fetches the configured remote and prunes stale tracking references.
func (source *LocalReferenceSource) FetchPrune(executionContext context.Context, repositoryPath string) error {
	return fetchPrune(executionContext, source.executor, repositoryPath, source.remoteName)
}

// ListReferences lists local heads ordered by commit time descending.
func (source *LocalReferenceSource) ListReferences(executionContext context.Context, repositoryPath string) (ReferenceListing, error) {
	return listReferences(executionContext, source.executor, repositoryPath, localHeadsNamespaceConstant)
}

// RemoteReferenceSource lists a named remote's tracking references.
type RemoteReferenceSource struct {
	executor   shared.GitExecutor
	remoteName string
}

// NewRemoteReferenceSource constructs a RemoteReferenceSource over the provided executor.
func NewRemoteReferenceSource(executor shared.GitExecutor, remoteName string) (*RemoteReferenceSource, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &RemoteReferenceSource{executor: executor, remoteName: trimmedRemoteName}, nil
}

// FetchPrune fetches the configured remote and prunes stale tracking references.
func (source *RemoteReferenceSource) FetchPrune(executionContext context.Context, repositoryPath string) error {
	return fetchPrune(executionContext, source.executor, repositoryPath, source.remoteName)
}

// ListReferences lists the remote's tracking references ordered by commit time descending.
func (source *RemoteReferenceSource) ListReferences(executionContext context.Context, repositoryPath string) (ReferenceListing, error) {
	namespace := fmt.Sprintf(remoteTrackingNamespaceTemplateConstant, source.remoteName)
	return listReferences(executionContext, source.executor, repositoryPath, namespace)
}

func fetchPrune(executionContext context.Context, executor shared.GitExecutor, repositoryPath string, remoteName string) error {
	_, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitFetchPruneFlagConstant, remoteName},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
	return executionError
}

func listReferences(executionContext context.Context, executor shared.GitExecutor, repositoryPath string, namespace string) (ReferenceListing, error) {
	executionResult, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitForEachRefSubcommandConstant,
			gitCommitterDateSortFlagConstant,
			gitReferenceFormatFlagConstant,
			namespace,
		},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return ReferenceListing{}, executionError
	}

	return parseReferenceOutput(executionResult.StandardOutput), nil
}

func parseReferenceOutput(rawOutput string) ReferenceListing {
	listing := ReferenceListing{}
	for _, rawLine := range strings.Split(rawOutput, "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}

		reference, parseError := parseReferenceLine(trimmedLine)
		if parseError != nil {
			listing.MalformedLines = append(listing.MalformedLines, trimmedLine)
			continue
		}
		listing.References = append(listing.References, reference)
	}
	return listing
}

func parseReferenceLine(line string) (BranchReference, error) {
	fields := strings.Split(line, referenceFieldSeparatorConstant)
	if len(fields) != referenceFieldCountConstant {
		return BranchReference{}, fmt.Errorf("expected %d fields, found %d", referenceFieldCountConstant, len(fields))
	}

	shortName := strings.TrimSpace(fields[0])
	fullReference := strings.TrimSpace(fields[1])
	rawTimestamp := strings.TrimSpace(fields[2])
	if len(shortName) == 0 || len(fullReference) == 0 {
		return BranchReference{}, errors.New("reference name missing")
	}

	unixTimestamp, timestampError := strconv.ParseInt(rawTimestamp, 10, 64)
	if timestampError != nil {
		return BranchReference{}, fmt.Errorf("invalid commit timestamp %q: %w", rawTimestamp, timestampError)
	}

	return BranchReference{
		Name:          shortName,
		FullReference: fullReference,
		CommittedAt:   time.Unix(unixTimestamp, 0).UTC(),
	}, nil
}
