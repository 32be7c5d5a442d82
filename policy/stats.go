package policy

import "civicconnect-be/models"

// StatusCounts backs the dashboard summary cards.
type StatusCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

func CountByStatus(issues []models.Issue) StatusCounts {
	counts := StatusCounts{Total: len(issues)}
	for i := range issues {
		switch issues[i].Status {
		case models.Pending:
			counts.Pending++
		case models.InProgress:
			counts.InProgress++
		case models.Resolved:
			counts.Resolved++
		}
	}
	return counts
}
