package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civicconnect-be/config"
	"civicconnect-be/models"
	"civicconnect-be/repository"
	"civicconnect-be/repository/mock_repository"
)

type mockStore struct {
	*mock_repository.MockIssueStore
	*mock_repository.MockProfileStore
	*mock_repository.MockUserStore
}

func (mockStore) Close(context.Context) error { return nil }

func setupCLI(t *testing.T) *mock_repository.MockIssueStore {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://unused")

	ctrl := gomock.NewController(t)
	issues := mock_repository.NewMockIssueStore(ctrl)
	store := mockStore{
		MockIssueStore:   issues,
		MockProfileStore: mock_repository.NewMockProfileStore(ctrl),
		MockUserStore:    mock_repository.NewMockUserStore(ctrl),
	}

	orig := openStore
	openStore = func(context.Context, *config.Config) (repository.Store, error) { return store, nil }
	t.Cleanup(func() { openStore = orig })

	issuePublic = false
	issueSearch = ""
	issueStatus = "all"
	issueCategory = "all"
	return issues
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

func cliIssues() []models.Issue {
	contact := "555-7777"
	return []models.Issue{
		{ID: "i2", Title: "Blocked drain", Location: "River Rd", Category: "drainage", Status: models.Pending, Priority: models.High, UserID: "u2", ContactInfo: &contact, CreatedAt: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)},
		{ID: "i1", Title: "Broken light", Location: "Oak Ave", Category: "streetlights", Status: models.Resolved, Priority: models.Low, UserID: "u1", CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func TestIssuesList_OperatorSeesContact(t *testing.T) {
	issues := setupCLI(t)
	issues.EXPECT().ListAll(gomock.Any()).Return(cliIssues(), nil)

	out, err := runCLI(t, "issues", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked drain")
	assert.Contains(t, out, "Broken light")
	assert.Contains(t, out, "555-7777")
}

func TestIssuesList_PublicIsRedacted(t *testing.T) {
	issues := setupCLI(t)
	issues.EXPECT().ListAll(gomock.Any()).Return(cliIssues(), nil)

	out, err := runCLI(t, "issues", "list", "--public", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked drain")
	assert.NotContains(t, out, "Broken light")
	assert.NotContains(t, out, "555-7777")
}

func TestIssuesStats(t *testing.T) {
	issues := setupCLI(t)
	issues.EXPECT().ListAll(gomock.Any()).Return(cliIssues(), nil)

	out, err := runCLI(t, "issues", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "2")
}

func TestIssuesList_ConfigError(t *testing.T) {
	setupCLI(t)
	t.Setenv("JWT_SECRET", "")

	_, err := runCLI(t, "issues", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "civicconnect dev")
}
