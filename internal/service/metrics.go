package service

import (
	"context"
	"math"

	"github.com/featuredesk/backend/internal/models"
)

// ComputeMetrics aggregates the dashboard figures over all requests.
// Resolution time is measured from creation to the terminal update, so only
// declined and released requests contribute to the average.
func ComputeMetrics(ctx context.Context, store Store) (models.Metrics, error) {
	const pageSize = 200

	var requests []models.Request
	for offset := 0; ; offset += pageSize {
		page, err := store.ListRequests(ctx, RequestFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return models.Metrics{}, err
		}
		requests = append(requests, page...)
		if len(page) < pageSize {
			break
		}
	}

	m := models.Metrics{
		ByStatus:   make(map[models.RequestStatus]int),
		ByCategory: make(map[models.RequestCategory]int),
	}

	var resolvedDays float64
	var resolvedCount int
	for _, r := range requests {
		m.TotalRequests++
		m.ByStatus[r.CurrentStatus]++
		m.ByCategory[r.Category]++

		switch r.CurrentStatus {
		case models.StatusAccepted:
			m.AcceptedRequests++
		case models.StatusDeclined:
			m.DeclinedRequests++
		}
		if !r.CurrentStatus.Terminal() {
			m.ActiveRequests++
		} else {
			resolvedDays += r.LastUpdatedDate.Sub(r.CreationDate).Hours() / 24
			resolvedCount++
		}
	}
	if resolvedCount > 0 {
		m.AverageResolutionDays = math.Round(resolvedDays/float64(resolvedCount)*10) / 10
	}
	return m, nil
}
