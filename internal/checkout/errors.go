package checkout

import (
	"errors"
	"fmt"
	"strings"
)

const (
	fetchFailedMessageConstant          = "Failed to fetch remote repository"
	listFailedMessageConstant           = "Failed to list remote branches"
	noBranchForIssueTemplateConstant    = "No branch found for issue %d. Please ensure the issue number is correct and that a branch has been created using default name settings."
	branchNotFoundTemplateConstant      = "No branch named %s exists."
	checkoutCreateFailedMessageConstant = "Failed to checkout remote branch"
	mergeProbeFailedTemplateConstant    = "Failed to inspect local branch %s"
	switchFailedTemplateConstant        = "Failed to switch to local branch %s"
	nonFastForwardTemplateConstant      = "Could not apply remote changes: History is non-fast forward.\nRebase using: %s"
	rebaseFailedTemplateConstant        = "Failed to rebase on top of %s"
	ambiguousHeaderTemplateConstant     = "%d branches found for issue %d:"
	ambiguousCandidateTemplateConstant  = "%d. %s"
	ambiguousHintTemplateConstant       = "Relaunch using: %s"
	causedByHeaderConstant              = "\nCaused by:\n"
	causeIndentConstant                 = "  "
	lineSeparatorConstant               = "\n"
)

// Error kinds reported by Service.Checkout. Match them with errors.Is.
var (
	ErrFetch            = errors.New("fetch failed")
	ErrList             = errors.New("branch listing failed")
	ErrNoBranchForIssue = errors.New("no branch for issue")
	ErrAmbiguousBranch  = errors.New("ambiguous branch")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrCheckoutCreate   = errors.New("checkout create failed")
	ErrMergeProbe       = errors.New("merge probe failed")
	ErrSwitch           = errors.New("switch failed")
	ErrNonFastForward   = errors.New("non-fast-forward history")
	ErrRebase           = errors.New("rebase failed")
)

// StepError reports the failing step of a checkout together with its cause.
type StepError struct {
	Kind    error
	Message string
	Cause   error
}

func newStepError(kind error, message string, cause error) *StepError {
	return &StepError{Kind: kind, Message: message, Cause: cause}
}

// Error renders the message followed by the indented causal chain.
func (stepError *StepError) Error() string {
	if stepError.Cause == nil {
		return stepError.Message
	}
	indentedCause := strings.ReplaceAll(stepError.Cause.Error(), lineSeparatorConstant, lineSeparatorConstant+causeIndentConstant)
	return stepError.Message + causedByHeaderConstant + causeIndentConstant + indentedCause
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (stepError *StepError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if stepError.Kind != nil {
		unwrapped = append(unwrapped, stepError.Kind)
	}
	if stepError.Cause != nil {
		unwrapped = append(unwrapped, stepError.Cause)
	}
	return unwrapped
}

// AmbiguousBranchError lists every remote branch matching the issue.
type AmbiguousBranchError struct {
	IssueNumber  int
	Candidates   []string
	RelaunchHint string
}

func (ambiguousError *AmbiguousBranchError) Error() string {
	lines := make([]string, 0, len(ambiguousError.Candidates)+3)
	lines = append(lines, fmt.Sprintf(ambiguousHeaderTemplateConstant, len(ambiguousError.Candidates), ambiguousError.IssueNumber))
	for candidateIndex, candidate := range ambiguousError.Candidates {
		lines = append(lines, fmt.Sprintf(ambiguousCandidateTemplateConstant, candidateIndex+1, candidate))
	}
	lines = append(lines, "", fmt.Sprintf(ambiguousHintTemplateConstant, ambiguousError.RelaunchHint))
	return strings.Join(lines, lineSeparatorConstant)
}

// Is matches ErrAmbiguousBranch.
func (ambiguousError *AmbiguousBranchError) Is(target error) bool {
	return target == ErrAmbiguousBranch
}
