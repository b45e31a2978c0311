package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// RegisterAgent anchors an agent on the ledger
func (h *Handlers) RegisterAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rec, err := h.ledger.Register(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SyncAgent refreshes an agent's anchor
func (h *Handlers) SyncAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rec, err := h.ledger.Sync(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UnregisterAgent drops an agent's anchor
func (h *Handlers) UnregisterAgent(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rec, err := h.ledger.Unregister(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListRegistered lists agents with an on-chain anchor
func (h *Handlers) ListRegistered(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.ledger.ListRegistered()})
}

type contractRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Terms       map[string]string `json:"terms"`
}

// DeployContract creates a contract for an agent
func (h *Handlers) DeployContract(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, badRequest("invalid request body: "+err.Error()))
		return
	}

	var terms map[string]string
	if req.Terms != nil {
		terms = make(map[string]string, len(req.Terms))
		for k, v := range req.Terms {
			terms[h.sanitizer.Text(k)] = h.sanitizer.Text(v)
		}
	}

	view, err := h.ledger.DeployContract(c.Request.Context(), id, types.ContractInput{
		Name:        h.sanitizer.Text(req.Name),
		Description: h.sanitizer.Text(req.Description),
		Status:      types.ContractStatus(req.Status),
		Terms:       terms,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListContracts lists an agent's contracts
func (h *Handlers) ListContracts(c *gin.Context) {
	id, err := agentID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.ledger.Get(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.ledger.Contracts(id)})
}
