package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gfc/internal/execshell"
	"github.com/temirov/gfc/internal/issues"
)

const (
	runnerMissingMessageConstant        = "command runner not configured"
	defaultRemoteNameConstant           = "origin"
	gitBranchSubcommandConstant         = "branch"
	gitRemoteBranchesFlagConstant       = "-r"
	gitShowSubcommandConstant           = "show"
	gitQuietFlagConstant                = "--quiet"
	gitLocalBranchRefPrefixConstant     = "refs/heads/"
	gitEndOfRevisionsConstant           = "--"
	gitCheckoutSubcommandConstant       = "checkout"
	gitCreateBranchFlagConstant         = "-b"
	gitMergeSubcommandConstant          = "merge"
	gitFastForwardOnlyFlagConstant      = "--ff-only"
	gitRebaseSubcommandConstant         = "rebase"
	gitAutostashFlagConstant            = "--autostash"
	missingRevisionExitCodeConstant     = 128
	selectBranchHintTemplateConstant    = "%s --select-branch <name>"
	rebaseHintTemplateConstant          = "%s --rebase"
	defaultInvocationConstant           = "gfc"
	remoteBranchesLoggedMessageConstant = "remote branches listed"
	branchSelectedLoggedMessageConstant = "issue branch selected"
	issueBranchesMatchedMessageConstant = "issue branches matched"
	localBranchMissingMessageConstant   = "local branch missing; creating tracking branch"
	fastForwardRejectedMessageConstant  = "fast-forward merge rejected"
	issueNumberLogFieldConstant         = "issue"
	remoteNameLogFieldConstant          = "remote"
	remoteBranchLogFieldConstant        = "remote_branch"
	localBranchLogFieldConstant         = "local_branch"
	matchingBranchCountLogFieldConstant = "matching_branches"
	listedBranchCountLogFieldConstant   = "listed_branches"
	rebaseEnabledLogFieldConstant       = "rebase"
)

// ErrRunnerNotConfigured indicates the command runner dependency was missing.
var ErrRunnerNotConfigured = errors.New(runnerMissingMessageConstant)

// Outcome describes how the local branch was brought up to date.
type Outcome string

// Checkout outcomes.
const (
	OutcomeCreated  Outcome = "created"
	OutcomeSwitched Outcome = "switched"
	OutcomeUpdated  Outcome = "updated"
)

// Options configure a checkout.
type Options struct {
	RemoteName   string
	IssueNumber  int
	SelectBranch string
	Rebase       bool
	// Invocation is the command line echoed back in relaunch hints.
	Invocation string
}

// Result captures the checked out branch.
type Result struct {
	LocalBranch  string
	RemoteBranch string
	Outcome      Outcome
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Runner     CommandRunner
	Logger     *zap.Logger
	HintStyler func(string) string
}

// Service resolves and checks out the branch of an issue.
type Service struct {
	runner     CommandRunner
	logger     *zap.Logger
	hintStyler func(string) string
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hintStyler := dependencies.HintStyler
	if hintStyler == nil {
		hintStyler = func(hint string) string { return hint }
	}
	return &Service{runner: dependencies.Runner, logger: logger, hintStyler: hintStyler}, nil
}

// Checkout fetches the remote, selects the issue branch, and creates, fast-forwards, or rebases the local branch.
func (service *Service) Checkout(executionContext context.Context, options Options) (Result, error) {
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	remoteName, remoteError := issues.ParseRemoteName(remoteName)
	if remoteError != nil {
		return Result{}, remoteError
	}
	invocation := strings.TrimSpace(options.Invocation)
	if len(invocation) == 0 {
		invocation = defaultInvocationConstant
	}

	if fetchError := service.runner.Fetch(executionContext, remoteName); fetchError != nil {
		return Result{}, newStepError(ErrFetch, fetchFailedMessageConstant, fetchError)
	}

	listing, listError := service.runner.Run(executionContext, gitBranchSubcommandConstant, gitRemoteBranchesFlagConstant)
	if listError != nil {
		return Result{}, newStepError(ErrList, listFailedMessageConstant, listError)
	}
	remoteBranches := issues.ParseRemoteBranches(listing)

	matcher := issues.NewBranchMatcher(remoteName, options.IssueNumber)
	remoteBranch, selectionError := service.selectRemoteBranch(matcher, remoteBranches, options, invocation)
	if selectionError != nil {
		return Result{}, selectionError
	}

	localBranch, matched := matcher.LocalName(remoteBranch)
	if !matched {
		return Result{}, newStepError(ErrBranchNotFound, fmt.Sprintf(branchNotFoundTemplateConstant, remoteBranch), nil)
	}

	service.logger.Debug(branchSelectedLoggedMessageConstant,
		zap.Int(issueNumberLogFieldConstant, options.IssueNumber),
		zap.String(remoteBranchLogFieldConstant, remoteBranch),
		zap.String(localBranchLogFieldConstant, localBranch),
		zap.Bool(rebaseEnabledLogFieldConstant, options.Rebase),
	)

	result := Result{LocalBranch: localBranch, RemoteBranch: remoteBranch}

	_, probeError := service.runner.Run(executionContext, gitShowSubcommandConstant, gitQuietFlagConstant, gitLocalBranchRefPrefixConstant+localBranch, gitEndOfRevisionsConstant)
	if probeError != nil {
		if exitCode, hasExitCode := execshell.ExitCode(probeError); hasExitCode && exitCode == missingRevisionExitCodeConstant {
			service.logger.Debug(localBranchMissingMessageConstant, zap.String(localBranchLogFieldConstant, localBranch))
			if _, createError := service.runner.Run(executionContext, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, localBranch, remoteBranch); createError != nil {
				return Result{}, newStepError(ErrCheckoutCreate, checkoutCreateFailedMessageConstant, createError)
			}
			result.Outcome = OutcomeCreated
			return result, nil
		}
		return Result{}, newStepError(ErrMergeProbe, fmt.Sprintf(mergeProbeFailedTemplateConstant, localBranch), probeError)
	}

	if _, switchError := service.runner.Run(executionContext, gitCheckoutSubcommandConstant, localBranch); switchError != nil {
		return Result{}, newStepError(ErrSwitch, fmt.Sprintf(switchFailedTemplateConstant, localBranch), switchError)
	}

	_, mergeError := service.runner.Run(executionContext, gitMergeSubcommandConstant, gitFastForwardOnlyFlagConstant, remoteBranch)
	if mergeError == nil {
		result.Outcome = OutcomeSwitched
		return result, nil
	}

	service.logger.Debug(fastForwardRejectedMessageConstant, zap.String(remoteBranchLogFieldConstant, remoteBranch), zap.Error(mergeError))
	if !options.Rebase {
		hint := service.hintStyler(fmt.Sprintf(rebaseHintTemplateConstant, invocation))
		return Result{}, newStepError(ErrNonFastForward, fmt.Sprintf(nonFastForwardTemplateConstant, hint), mergeError)
	}

	if _, rebaseError := service.runner.Run(executionContext, gitRebaseSubcommandConstant, remoteBranch, gitAutostashFlagConstant); rebaseError != nil {
		return Result{}, newStepError(ErrRebase, fmt.Sprintf(rebaseFailedTemplateConstant, remoteBranch), rebaseError)
	}
	result.Outcome = OutcomeUpdated
	return result, nil
}

func (service *Service) selectRemoteBranch(matcher issues.BranchMatcher, remoteBranches []string, options Options, invocation string) (string, error) {
	service.logger.Debug(remoteBranchesLoggedMessageConstant, zap.Int(listedBranchCountLogFieldConstant, len(remoteBranches)))

	selectedBranch := strings.TrimSpace(options.SelectBranch)
	if len(selectedBranch) > 0 {
		qualifiedBranch := matcher.Qualify(selectedBranch)
		for _, remoteBranch := range remoteBranches {
			if remoteBranch == selectedBranch || remoteBranch == qualifiedBranch {
				return remoteBranch, nil
			}
		}
		return "", newStepError(ErrBranchNotFound, fmt.Sprintf(branchNotFoundTemplateConstant, selectedBranch), nil)
	}

	candidates := matcher.Filter(remoteBranches)
	service.logger.Debug(issueBranchesMatchedMessageConstant,
		zap.String(remoteNameLogFieldConstant, matcher.RemoteName()),
		zap.Int(matchingBranchCountLogFieldConstant, len(candidates)),
	)

	switch len(candidates) {
	case 0:
		return "", newStepError(ErrNoBranchForIssue, fmt.Sprintf(noBranchForIssueTemplateConstant, options.IssueNumber), nil)
	case 1:
		return candidates[0], nil
	default:
		hint := service.hintStyler(fmt.Sprintf(selectBranchHintTemplateConstant, invocation))
		return "", &AmbiguousBranchError{IssueNumber: options.IssueNumber, Candidates: candidates, RelaunchHint: hint}
	}
}
