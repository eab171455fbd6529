package issues

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	invalidIssueNumberMessageConstant     = "invalid issue number"
	invalidIssueNumberTemplateConstant    = "%w: integer expected, got: %q"
	invalidRemoteNameMessageConstant      = "invalid remote name"
	invalidRemoteNameTemplateConstant     = "%w: %q"
	parentDirectorySequenceConstant       = ".."
	issueNumberPrefixConstant             = "#"
	branchPatternTemplateConstant         = `^%s/(%d-[A-Za-z0-9-]+)$`
	remoteBranchTemplateConstant          = "%s/%s"
	remoteBranchSeparatorConstant         = "/"
	branchListingLineSeparatorConstant    = "\n"
	symbolicReferenceMarkerConstant       = " -> "
	localBranchCaptureGroupIndexConstant  = 1
	localBranchCaptureGroupLengthConstant = 2
)

var (
	issueNumberPattern = regexp.MustCompile(`^\s*#?[1-9][0-9]*\s*$`)
	remoteNamePattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)
)

// ErrInvalidIssueNumber indicates the issue number text is not a positive integer.
var ErrInvalidIssueNumber = errors.New(invalidIssueNumberMessageConstant)

// ErrInvalidRemoteName indicates the remote name could be read by git as an option or is not a valid ref component.
var ErrInvalidRemoteName = errors.New(invalidRemoteNameMessageConstant)

// ParseNumber converts user supplied text such as "42" or " #42 " into an issue number.
func ParseNumber(text string) (int, error) {
	if !issueNumberPattern.MatchString(text) {
		return 0, fmt.Errorf(invalidIssueNumberTemplateConstant, ErrInvalidIssueNumber, text)
	}

	digits := strings.TrimPrefix(strings.TrimSpace(text), issueNumberPrefixConstant)
	issueNumber, conversionError := strconv.Atoi(digits)
	if conversionError != nil {
		return 0, fmt.Errorf(invalidIssueNumberTemplateConstant, ErrInvalidIssueNumber, text)
	}
	return issueNumber, nil
}

// ParseRemoteName trims the remote name and rejects values git could treat as options or that cannot name a remote.
func ParseRemoteName(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if !remoteNamePattern.MatchString(trimmed) || strings.Contains(trimmed, parentDirectorySequenceConstant) || strings.HasSuffix(trimmed, remoteBranchSeparatorConstant) {
		return "", fmt.Errorf(invalidRemoteNameTemplateConstant, ErrInvalidRemoteName, text)
	}
	return trimmed, nil
}

// BranchMatcher recognizes remote branches named <remote>/<issue>-<slug>.
type BranchMatcher struct {
	remoteName  string
	issueNumber int
	pattern     *regexp.Regexp
}

// NewBranchMatcher builds a matcher for the given remote and issue number.
func NewBranchMatcher(remoteName string, issueNumber int) BranchMatcher {
	trimmedRemote := strings.TrimSpace(remoteName)
	return BranchMatcher{
		remoteName:  trimmedRemote,
		issueNumber: issueNumber,
		pattern:     regexp.MustCompile(fmt.Sprintf(branchPatternTemplateConstant, regexp.QuoteMeta(trimmedRemote), issueNumber)),
	}
}

// RemoteName returns the trimmed remote the matcher was built for.
func (matcher BranchMatcher) RemoteName() string {
	return matcher.remoteName
}

// Matches reports whether the remote branch name follows the issue naming convention.
func (matcher BranchMatcher) Matches(remoteBranchName string) bool {
	return matcher.pattern.MatchString(remoteBranchName)
}

// LocalName extracts <issue>-<slug> from a matching remote branch name.
func (matcher BranchMatcher) LocalName(remoteBranchName string) (string, bool) {
	submatches := matcher.pattern.FindStringSubmatch(remoteBranchName)
	if len(submatches) < localBranchCaptureGroupLengthConstant {
		return "", false
	}
	return submatches[localBranchCaptureGroupIndexConstant], true
}

// Filter keeps the branch names that match, preserving order.
func (matcher BranchMatcher) Filter(remoteBranchNames []string) []string {
	matching := make([]string, 0, len(remoteBranchNames))
	for _, remoteBranchName := range remoteBranchNames {
		if matcher.Matches(remoteBranchName) {
			matching = append(matching, remoteBranchName)
		}
	}
	return matching
}

// Qualify prefixes a bare branch name with the remote unless it already carries it.
func (matcher BranchMatcher) Qualify(branchName string) string {
	trimmed := strings.TrimSpace(branchName)
	if strings.HasPrefix(trimmed, matcher.remoteName+remoteBranchSeparatorConstant) {
		return trimmed
	}
	return fmt.Sprintf(remoteBranchTemplateConstant, matcher.remoteName, trimmed)
}

// ParseRemoteBranches splits `git branch -r` output into trimmed branch names.
// Symbolic entries such as "origin/HEAD -> origin/main" are skipped.
func ParseRemoteBranches(output string) []string {
	lines := strings.Split(output, branchListingLineSeparatorConstant)
	branchNames := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.Contains(trimmed, symbolicReferenceMarkerConstant) {
			continue
		}
		branchNames = append(branchNames, trimmed)
	}
	return branchNames
}
