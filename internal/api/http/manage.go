package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// CreateAgent registers a new agent
func (h *Handlers) CreateAgent(c *gin.Context) {
	var in convert.ManagedInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	a, err := h.management.Create(c.Request.Context(), h.sanitizeInput(in))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListManaged lists agents in management shape, optionally searched
func (h *Handlers) ListManaged(c *gin.Context) {
	if q := h.sanitizer.Text(c.Query("q")); q != "" {
		c.JSON(http.StatusOK, gin.H{"agents": h.management.Search(q)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": h.management.List()})
}

// GetManaged returns one agent in management shape
func (h *Handlers) GetManaged(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	a, err := h.management.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAgent applies a partial update
func (h *Handlers) UpdateAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var u convert.ManagedUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		h.respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	a, err := h.management.Update(c.Request.Context(), id, h.sanitizeUpdate(u))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	Status types.AgentStatus `json:"status" binding:"required"`
}

// SetStatus changes an agent's status
func (h *Handlers) SetStatus(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	a, err := h.management.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAgent removes an agent. Contracts bound to it stay in the store
// and still count toward /health.
func (h *Handlers) DeleteAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.management.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (h *Handlers) sanitizeInput(in convert.ManagedInput) convert.ManagedInput {
	s := h.sanitizer
	in.Name = s.Text(in.Name)
	in.Description = s.Text(in.Description)
	in.Version = s.Text(in.Version)
	in.Type = s.Text(in.Type)
	in.SecurityLevel = s.Text(in.SecurityLevel)
	in.Capabilities = s.List(in.Capabilities)
	in.Permissions = s.List(in.Permissions)
	in.Tags = s.List(in.Tags)
	in.Categories = s.List(in.Categories)
	in.Compliance = s.List(in.Compliance)
	return in
}

func (h *Handlers) sanitizeUpdate(u convert.ManagedUpdate) convert.ManagedUpdate {
	s := h.sanitizer
	text := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := s.Text(*p)
		return &v
	}
	u.Name = text(u.Name)
	u.Description = text(u.Description)
	u.Version = text(u.Version)
	u.Type = text(u.Type)
	u.SecurityLevel = text(u.SecurityLevel)
	u.Capabilities = s.List(u.Capabilities)
	u.Permissions = s.List(u.Permissions)
	u.Tags = s.List(u.Tags)
	u.Categories = s.List(u.Categories)
	u.Compliance = s.List(u.Compliance)
	return u
}
