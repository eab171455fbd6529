package checkout_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gfc/internal/checkout"
	"github.com/temirov/gfc/internal/issues"
)

type gitFixture struct {
	testInstance  *testing.T
	remotePath    string
	publisherPath string
	workspacePath string
}

func newGitFixture(testInstance *testing.T) *gitFixture {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	testInstance.Setenv("GIT_AUTHOR_NAME", "gfc")
	testInstance.Setenv("GIT_AUTHOR_EMAIL", "gfc@example.com")
	testInstance.Setenv("GIT_COMMITTER_NAME", "gfc")
	testInstance.Setenv("GIT_COMMITTER_EMAIL", "gfc@example.com")
	testInstance.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	testInstance.Setenv("HOME", testInstance.TempDir())

	rootPath := testInstance.TempDir()
	fixture := &gitFixture{
		testInstance:  testInstance,
		remotePath:    filepath.Join(rootPath, "remote.git"),
		publisherPath: filepath.Join(rootPath, "publisher"),
		workspacePath: filepath.Join(rootPath, "workspace"),
	}

	fixture.git(rootPath, "-c", "init.defaultBranch=main", "init", "--bare", fixture.remotePath)
	fixture.git(rootPath, "clone", fixture.remotePath, fixture.publisherPath)
	fixture.commit(fixture.publisherPath, "README.md", "gfc\n")
	fixture.git(fixture.publisherPath, "push", "origin", "HEAD:main")
	fixture.git(fixture.publisherPath, "checkout", "-b", "42-fix-bug")
	fixture.commit(fixture.publisherPath, "fix.txt", "first\n")
	fixture.git(fixture.publisherPath, "push", "origin", "42-fix-bug")
	fixture.git(rootPath, "clone", fixture.remotePath, fixture.workspacePath)

	return fixture
}

func (fixture *gitFixture) git(workingDirectory string, arguments ...string) string {
	fixture.testInstance.Helper()
	command := exec.Command("git", arguments...)
	command.Dir = workingDirectory
	output, runError := command.CombinedOutput()
	require.NoErrorf(fixture.testInstance, runError, "git %s: %s", strings.Join(arguments, " "), output)
	return strings.TrimSpace(string(output))
}

func (fixture *gitFixture) commit(repositoryPath string, fileName string, content string) {
	fixture.testInstance.Helper()
	require.NoError(fixture.testInstance, os.WriteFile(filepath.Join(repositoryPath, fileName), []byte(content), 0o600))
	fixture.git(repositoryPath, "add", fileName)
	fixture.git(repositoryPath, "commit", "-m", "update "+fileName)
}

func (fixture *gitFixture) checkout(arguments ...string) (string, error) {
	fixture.testInstance.Helper()
	builder := checkout.CommandBuilder{
		WorkingDirectory: fixture.workspacePath,
		ConfigurationProvider: func() checkout.CommandConfiguration {
			return checkout.CommandConfiguration{RemoteName: "origin"}
		},
	}
	command, buildError := builder.Build()
	require.NoError(fixture.testInstance, buildError)

	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(&bytes.Buffer{})
	command.SetContext(context.Background())
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs(arguments)

	executionError := command.Execute()
	return output.String(), executionError
}

func TestCheckoutAgainstRealRepository(t *testing.T) {
	fixture := newGitFixture(t)

	output, checkoutError := fixture.checkout("42")
	require.NoError(t, checkoutError)
	require.Equal(t, "✔ Successfully created and moved to branch 42-fix-bug.\n", output)
	require.Equal(t, "42-fix-bug", fixture.git(fixture.workspacePath, "rev-parse", "--abbrev-ref", "HEAD"))
	require.Equal(t, "origin/42-fix-bug", fixture.git(fixture.workspacePath, "rev-parse", "--abbrev-ref", "42-fix-bug@{upstream}"))

	fixture.commit(fixture.publisherPath, "fix.txt", "second\n")
	fixture.git(fixture.publisherPath, "push", "origin", "42-fix-bug")

	fixture.git(fixture.workspacePath, "checkout", "main")
	output, checkoutError = fixture.checkout("#42")
	require.NoError(t, checkoutError)
	require.Equal(t, "✔ Successfully switched to local branch 42-fix-bug.\n", output)
	require.Equal(t, fixture.git(fixture.publisherPath, "rev-parse", "HEAD"), fixture.git(fixture.workspacePath, "rev-parse", "HEAD"))

	fixture.commit(fixture.publisherPath, "remote.txt", "remote\n")
	fixture.git(fixture.publisherPath, "push", "origin", "42-fix-bug")
	fixture.commit(fixture.workspacePath, "local.txt", "local\n")

	_, checkoutError = fixture.checkout("42")
	require.ErrorIs(t, checkoutError, checkout.ErrNonFastForward)
	require.Contains(t, checkoutError.Error(), "Rebase using: gfc 42 --rebase")

	output, checkoutError = fixture.checkout("42", "--rebase")
	require.NoError(t, checkoutError)
	require.Equal(t, "✔ Successfully updated local branch 42-fix-bug.\n", output)
	require.Equal(t, fixture.git(fixture.publisherPath, "rev-parse", "HEAD"), fixture.git(fixture.workspacePath, "rev-parse", "HEAD~1"))
}

func TestCheckoutReportsMissingIssueBranch(t *testing.T) {
	fixture := newGitFixture(t)

	_, checkoutError := fixture.checkout("7")
	require.ErrorIs(t, checkoutError, checkout.ErrNoBranchForIssue)
	require.Equal(t, "main", fixture.git(fixture.workspacePath, "rev-parse", "--abbrev-ref", "HEAD"))
}

func TestCheckoutIgnoresTagNamedLikeIssueBranch(t *testing.T) {
	fixture := newGitFixture(t)
	fixture.git(fixture.workspacePath, "tag", "42-fix-bug", "HEAD")

	output, checkoutError := fixture.checkout("42")
	require.NoError(t, checkoutError)
	require.Equal(t, "✔ Successfully created and moved to branch 42-fix-bug.\n", output)
	require.Equal(t, "refs/heads/42-fix-bug", fixture.git(fixture.workspacePath, "symbolic-ref", "HEAD"))

	fixture.git(fixture.workspacePath, "checkout", "main")
	output, checkoutError = fixture.checkout("42")
	require.NoError(t, checkoutError)
	require.Equal(t, "✔ Successfully switched to local branch 42-fix-bug.\n", output)
	require.Equal(t, "refs/heads/42-fix-bug", fixture.git(fixture.workspacePath, "symbolic-ref", "HEAD"))
}

func TestCheckoutRejectsRemoteNameParsedAsGitOption(t *testing.T) {
	fixture := newGitFixture(t)
	markerPath := filepath.Join(t.TempDir(), "marker")

	_, checkoutError := fixture.checkout("42", "--remote-name=--upload-pack=touch "+markerPath+"; git-upload-pack")
	require.ErrorIs(t, checkoutError, issues.ErrInvalidRemoteName)
	require.NoFileExists(t, markerPath)
	require.Equal(t, "main", fixture.git(fixture.workspacePath, "rev-parse", "--abbrev-ref", "HEAD"))
}
