package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"civicconnect-be/config"
	"civicconnect-be/policy"
	"civicconnect-be/repository"
	"civicconnect-be/services"
)

var (
	issueSearch   string
	issueStatus   string
	issueCategory string
	issuePublic   bool
)

var issuesCmd = &cobra.Command{
	Use:     "issues",
	Aliases: []string{"issue"},
	Short:   "Inspect reported issues",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, closeStore, err := openIssueService(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		issues, err := svc.List(ctx, operatorViewer(), policy.Filter{
			Term:     issueSearch,
			Status:   issueStatus,
			Category: issueCategory,
		})
		if err != nil {
			return err
		}
		ui.VerboseLog("%d issue(s)", len(issues))
		ui.Issues(issues)
		return nil
	},
}

var issuesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show issue counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, closeStore, err := openIssueService(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		counts, err := svc.Stats(ctx, operatorViewer())
		if err != nil {
			return err
		}
		ui.Stats(counts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issuesCmd)
	issuesCmd.AddCommand(issuesListCmd, issuesStatsCmd)

	issuesListCmd.Flags().StringVarP(&issueSearch, "search", "s", "", "Match title, description or location")
	issuesListCmd.Flags().StringVar(&issueStatus, "status", policy.FilterAll, "pending, in-progress, resolved or all")
	issuesListCmd.Flags().StringVar(&issueCategory, "category", policy.FilterAll, "Category or all")
	issueCmdPublicFlag(issuesListCmd)
	issueCmdPublicFlag(issuesStatsCmd)
}

func issueCmdPublicFlag(c *cobra.Command) {
	c.Flags().BoolVar(&issuePublic, "public", false, "Show what an anonymous visitor sees")
}

// operatorViewer is an admin identity unless --public asks for the
// anonymous projection.
func operatorViewer() policy.Viewer {
	if issuePublic {
		return policy.Anonymous()
	}
	return policy.NewViewer("cli", policy.RoleAdmin)
}

func openIssueService(ctx context.Context) (*services.IssueService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.Default()
	if !verbose {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return services.NewIssueService(store, logger), func() { _ = store.Close(context.Background()) }, nil
}

// openStore is swapped in tests.
var openStore = func(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	return config.OpenStore(ctx, cfg)
}
