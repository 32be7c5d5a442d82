package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"civicconnect-be/models"
	"civicconnect-be/policy"
	"civicconnect-be/repository"
)

// SubmitIssueInput is what a citizen fills in on the report form.
type SubmitIssueInput struct {
	Title       string
	Description string
	Location    string
	Category    string
	ContactInfo string
}

// UpdateIssueInput is a partial triage update. Nil fields stay unchanged.
type UpdateIssueInput struct {
	Status   *string
	Priority *string
}

type IssueService struct {
	issues repository.IssueStore
	log    *slog.Logger
}

func NewIssueService(issues repository.IssueStore, logger *slog.Logger) *IssueService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueService{issues: issues, log: logger}
}

// Submit stores a new pending, medium priority issue owned by viewer.
func (s *IssueService) Submit(ctx context.Context, viewer policy.Viewer, in SubmitIssueInput) (*models.Issue, error) {
	if viewer.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	issue := &models.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.TrimSpace(in.Category),
		Status:      models.Pending,
		Priority:    models.Medium,
		UserID:      viewer.UserID,
	}
	switch {
	case issue.Title == "":
		return nil, invalid("title", "title is required")
	case issue.Category == "":
		return nil, invalid("category", "category is required")
	case issue.Location == "":
		return nil, invalid("location", "location is required")
	case issue.Description == "":
		return nil, invalid("description", "description is required")
	case strings.EqualFold(issue.Category, policy.FilterAll):
		return nil, invalid("category", `"all" is reserved and cannot be used as a category`)
	}
	if contact := strings.TrimSpace(in.ContactInfo); contact != "" {
		issue.ContactInfo = &contact
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, remote("insert issue", err)
	}
	s.log.Info("issue submitted", "issue_id", issue.ID, "user_id", viewer.UserID, "category", issue.Category)

	projected := policy.Project(viewer, *issue)
	return &projected, nil
}

// List returns the viewer's scope, redacted per record, narrowed by f and
// ordered newest first.
func (s *IssueService) List(ctx context.Context, viewer policy.Viewer, f policy.Filter) ([]models.Issue, error) {
	issues, err := s.scoped(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return policy.Apply(policy.ProjectAll(viewer, issues), f), nil
}

// Stats counts the viewer's scope by status.
func (s *IssueService) Stats(ctx context.Context, viewer policy.Viewer) (policy.StatusCounts, error) {
	issues, err := s.scoped(ctx, viewer)
	if err != nil {
		return policy.StatusCounts{}, err
	}
	return policy.CountByStatus(issues), nil
}

func (s *IssueService) scoped(ctx context.Context, viewer policy.Viewer) ([]models.Issue, error) {
	var (
		issues []models.Issue
		err    error
	)
	switch policy.SelectScope(viewer) {
	case policy.ScopeOwned:
		issues, err = s.issues.ListByOwner(ctx, viewer.UserID)
	default:
		issues, err = s.issues.ListAll(ctx)
	}
	if err != nil {
		return nil, remote("list issues", err)
	}
	return issues, nil
}

// Update applies a triage change and assigns the issue to the acting
// authority. Concurrent updates are last-write-wins.
func (s *IssueService) Update(ctx context.Context, viewer policy.Viewer, id string, in UpdateIssueInput) (*models.Issue, error) {
	if viewer.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if !policy.CanManage(viewer) {
		return nil, ErrForbidden
	}

	update := models.IssueUpdate{AssignedTo: viewer.UserID}
	// An empty value leaves the field unchanged, same as omitting it.
	if in.Status != nil && *in.Status != "" {
		status := models.IssueStatus(*in.Status)
		if !status.Valid() {
			return nil, invalid("status", "status must be one of pending, in-progress, resolved")
		}
		update.Status = &status
	}
	if in.Priority != nil && *in.Priority != "" {
		priority := models.IssuePriority(*in.Priority)
		if !priority.Valid() {
			return nil, invalid("priority", "priority must be one of low, medium, high")
		}
		update.Priority = &priority
	}

	issue, err := s.issues.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			return nil, err
		}
		return nil, remote("update issue", err)
	}
	s.log.Info("issue updated", "issue_id", id, "assigned_to", viewer.UserID)

	projected := policy.Project(viewer, *issue)
	return &projected, nil
}
