package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicconnect-be/middlewares"
	"civicconnect-be/models"
	"civicconnect-be/policy"
	"civicconnect-be/services"
)

// IssueService is the issue side of the API.
type IssueService interface {
	Submit(ctx context.Context, viewer policy.Viewer, in services.SubmitIssueInput) (*models.Issue, error)
	List(ctx context.Context, viewer policy.Viewer, f policy.Filter) ([]models.Issue, error)
	Stats(ctx context.Context, viewer policy.Viewer) (policy.StatusCounts, error)
	Update(ctx context.Context, viewer policy.Viewer, id string, in services.UpdateIssueInput) (*models.Issue, error)
}

type IssueController struct {
	issues IssueService
}

func NewIssueController(issues IssueService) *IssueController {
	return &IssueController{issues: issues}
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"required,max=200"`
		Description string `json:"description" binding:"required,max=1000"`
		Category    string `json:"category" binding:"required"`
		Location    string `json:"location" binding:"required,max=200"`
		ContactInfo string `json:"contact_info" binding:"max=200"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	issue, err := ic.issues.Submit(c.Request.Context(), middlewares.ViewerFrom(c), services.SubmitIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Category:    input.Category,
		ContactInfo: input.ContactInfo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssues lists the viewer's scope narrowed by search, status and category.
func (ic *IssueController) GetIssues(c *gin.Context) {
	viewer := middlewares.ViewerFrom(c)
	filter := policy.Filter{
		Term:     c.Query("search"),
		Status:   c.DefaultQuery("status", policy.FilterAll),
		Category: c.DefaultQuery("category", policy.FilterAll),
	}

	issues, err := ic.issues.List(c.Request.Context(), viewer, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": len(issues),
		"scope":       policy.SelectScope(viewer).String(),
		"canManage":   policy.CanManage(viewer),
	})
}

// GetIssueStats returns the dashboard counts for the viewer's scope.
func (ic *IssueController) GetIssueStats(c *gin.Context) {
	counts, err := ic.issues.Stats(c.Request.Context(), middlewares.ViewerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// UpdateIssue changes status and/or priority and assigns the caller.
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	var input struct {
		Status   *string `json:"status"`
		Priority *string `json:"priority"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	issue, err := ic.issues.Update(c.Request.Context(), middlewares.ViewerFrom(c), c.Param("id"), services.UpdateIssueInput{
		Status:   input.Status,
		Priority: input.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}
