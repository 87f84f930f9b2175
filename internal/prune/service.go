package prune

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/ItsRohitSingh/git-branch-delete/internal/gitrefs"
	"github.com/ItsRohitSingh/git-branch-delete/internal/repos/shared"
	"github.com/ItsRohitSingh/git-branch-delete/internal/utils"
)

const (
	referenceSourceMissingMessageConstant = "reference source must be configured"
	branchDeleterMissingMessageConstant   = "branch deleter must be configured"

	fetchFailedErrorTemplateConstant     = "fetch failed for %s: %w"
	referenceListErrorTemplateConstant   = "unable to list branches in %s: %w"
	branchDeleteErrorTemplateConstant    = "unable to delete branch %s: %w"
	malformedReferenceMessageConstant    = "Skipping malformed reference line"
	branchDeletionFailedMessageConstant  = "Branch deletion failed"
	pruneCompletedMessageConstant        = "Branch pruning completed"
	logFieldRepositoryConstant           = "repository"
	logFieldBranchConstant               = "branch"
	logFieldReferenceLineConstant        = "line"
	branchLineTemplateConstant           = "%s\t%s\t(last commit %s)\n"
	summaryLineTemplateConstant          = "%s: %d stale, %d deleted, %d failed, %d kept, %d excluded\n"
	committedAtDisplayTimestampConstant  = "2006-01-02"
	planningLabelConstant                = "PLAN"
	deletedLabelConstant                 = "DELETED"
	deletionFailedLabelConstant          = "FAILED"
)

var (
	// ErrReferenceSourceNotConfigured indicates the reference source dependency was missing.
	ErrReferenceSourceNotConfigured = errors.New(referenceSourceMissingMessageConstant)
	// ErrBranchDeleterNotConfigured indicates the branch deleter dependency was missing.
	ErrBranchDeleterNotConfigured = errors.New(branchDeleterMissingMessageConstant)
)

var (
	planningLabel       = color.New(color.FgYellow).Sprint(planningLabelConstant)
	deletedLabel        = color.New(color.FgGreen).Sprint(deletedLabelConstant)
	deletionFailedLabel = color.New(color.FgRed).Sprint(deletionFailedLabelConstant)
)

// ServiceDependencies aggregates the collaborators required by the pruning service.
type ServiceDependencies struct {
	Logger          *zap.Logger
	ReferenceSource gitrefs.ReferenceSource
	BranchDeleter   gitrefs.BranchDeleter
	Reporter        shared.Reporter
	Clock           shared.Clock
}

// Service prunes stale branches within a single repository.
type Service struct {
	logger          *zap.Logger
	referenceSource gitrefs.ReferenceSource
	branchDeleter   gitrefs.BranchDeleter
	reporter        shared.Reporter
	clock           shared.Clock
}

// NewService validates dependencies and constructs a pruning service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ReferenceSource == nil {
		return nil, ErrReferenceSourceNotConfigured
	}
	if dependencies.BranchDeleter == nil {
		return nil, ErrBranchDeleterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(utils.NewFlushingWriter(os.Stdout))
	}

	clock := dependencies.Clock
	if clock == nil {
		clock = shared.SystemClock{}
	}

	return &Service{
		logger:          logger,
		referenceSource: dependencies.ReferenceSource,
		branchDeleter:   dependencies.BranchDeleter,
		reporter:        reporter,
		clock:           clock,
	}, nil
}

// Options configures a single pruning run.
type Options struct {
	RepositoryPath string
	Policy         Policy
	DryRun         bool
}

// Result summarizes the outcome of a pruning run.
type Result struct {
	StaleCount         int
	DeletedCount       int
	FailedCount        int
	KeptCount          int
	ExcludedCount      int
	MalformedLineCount int
}

// Prune refreshes remote state, classifies every branch, and deletes or
// previews the stale ones. Fetch and listing failures abort the run; an
// individual deletion failure is reported and the run continues.
func (service *Service) Prune(executionContext context.Context, options Options) (Result, error) {
	if fetchError := service.referenceSource.FetchPrune(executionContext, options.RepositoryPath); fetchError != nil {
		return Result{}, fmt.Errorf(fetchFailedErrorTemplateConstant, options.RepositoryPath, fetchError)
	}

	listing, listError := service.referenceSource.ListReferences(executionContext, options.RepositoryPath)
	if listError != nil {
		return Result{}, fmt.Errorf(referenceListErrorTemplateConstant, options.RepositoryPath, listError)
	}

	result := Result{MalformedLineCount: len(listing.MalformedLines)}
	for _, malformedLine := range listing.MalformedLines {
		service.logger.Warn(
			malformedReferenceMessageConstant,
			zap.String(logFieldRepositoryConstant, options.RepositoryPath),
			zap.String(logFieldReferenceLineConstant, malformedLine),
		)
	}

	now := service.clock.Now()

	for _, reference := range listing.References {
		classified := options.Policy.Classify(reference, now)

		switch classified.Classification {
		case ClassificationExcluded:
			result.ExcludedCount++
			continue
		case ClassificationKept:
			result.KeptCount++
			continue
		}

		result.StaleCount++

		if options.DryRun {
			service.reportBranchLine(planningLabel, classified)
			continue
		}

		deletionError := service.branchDeleter.DeleteBranch(executionContext, options.RepositoryPath, classified.NormalizedName)
		if deletionError != nil {
			if errors.Is(deletionError, context.Canceled) || errors.Is(deletionError, context.DeadlineExceeded) {
				return result, deletionError
			}

			result.FailedCount++
			service.reportBranchLine(deletionFailedLabel, classified)
			service.logger.Warn(
				branchDeletionFailedMessageConstant,
				zap.String(logFieldRepositoryConstant, options.RepositoryPath),
				zap.String(logFieldBranchConstant, classified.NormalizedName),
				zap.Error(fmt.Errorf(branchDeleteErrorTemplateConstant, classified.NormalizedName, deletionError)),
			)
			continue
		}

		result.DeletedCount++
		service.reportBranchLine(deletedLabel, classified)
	}

	service.reporter.Printf(
		summaryLineTemplateConstant,
		options.RepositoryPath,
		result.StaleCount,
		result.DeletedCount,
		result.FailedCount,
		result.KeptCount,
		result.ExcludedCount,
	)

	service.logger.Info(
		pruneCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.Int("stale", result.StaleCount),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("kept", result.KeptCount),
		zap.Int("excluded", result.ExcludedCount),
	)

	return result, nil
}

func (service *Service) reportBranchLine(label string, classified ClassifiedBranch) {
	service.reporter.Printf(
		branchLineTemplateConstant,
		label,
		classified.NormalizedName,
		classified.Reference.CommittedAt.Format(committedAtDisplayTimestampConstant),
	)
}
