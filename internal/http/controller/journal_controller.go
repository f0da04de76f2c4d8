package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/repository"
)

// ListJournalRequest represents the query parameters for listing journal events.
type ListJournalRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending processed failed"`
	Type   string `form:"type"`
	Limit  int32  `form:"limit"`
	Token  string `form:"token"`
}

// JournalEventResponse represents one journalled mutation outcome.
type JournalEventResponse struct {
	ID          string            `json:"id"`
	EventType   string            `json:"event_type"`
	Data        any               `json:"data"`
	Status      model.EventStatus `json:"status"`
	CreatedAt   string            `json:"created_at"`
	ProcessedAt string            `json:"processed_at,omitempty"`
}

// ListJournalResponse represents the response body for listing journal events.
type ListJournalResponse struct {
	Events        []JournalEventResponse `json:"events"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

// ListJournal handles the HTTP GET request for the mutation journal with pagination.
func (con *Controller) ListJournal(c *gin.Context) {
	if con.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal is not configured"})
		return
	}

	var req ListJournalRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewQuery().
		With(repository.StatusField, req.Status).
		With(repository.EventTypeField, req.Type)
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resources, err := con.journal.List(c.Request.Context(), *query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list journal"})
		return
	}

	events := make([]*model.Event, 0, len(resources))
	resp := ListJournalResponse{Events: make([]JournalEventResponse, 0, len(resources))}
	for _, resource := range resources {
		event, ok := resource.(*model.Event)
		if !ok {
			continue
		}
		events = append(events, event)
		resp.Events = append(resp.Events, toJournalEventResponse(event))
	}
	resp.NextPageToken = repository.NextPageToken(events, query.Limit)

	c.JSON(http.StatusOK, resp)
}

func toJournalEventResponse(event *model.Event) JournalEventResponse {
	resp := JournalEventResponse{
		ID:        event.ID.String(),
		EventType: event.EventType,
		Data:      event.EventData,
		Status:    event.Status,
		CreatedAt: event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if event.ProcessedAt != nil {
		resp.ProcessedAt = event.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
