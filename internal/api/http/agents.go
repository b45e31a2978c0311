package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/adapter"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
)

// SearchAgents runs a paginated discovery query
func (h *Handlers) SearchAgents(c *gin.Context) {
	req, err := h.parseSearch(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.engine.Search(c.Request.Context(), req.search, req.sort, req.filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if res.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, query.MapResult(res, convert.ToDiscovery))
}

// GetAgent returns one agent in discovery shape
func (h *Handlers) GetAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	a, ok := h.engine.GetDetails(id)
	if !ok {
		h.respondError(c, &adapter.NotFoundError{Kind: "agent", ID: id})
		return
	}
	c.JSON(http.StatusOK, convert.ToDiscovery(a))
}

type rateRequest struct {
	Rating float64 `json:"rating"`
}

// RateAgent records one review
func (h *Handlers) RateAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	a, err := h.discovery.Rate(c.Request.Context(), id, req.Rating)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
