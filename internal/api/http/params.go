package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// searchRequest is the parsed query string of GET /api/agents
type searchRequest struct {
	search query.SearchParams
	sort   query.SortParams
	filter types.AgentFilter
}

func (h *Handlers) parseSearch(c *gin.Context) (searchRequest, error) {
	var req searchRequest

	q := c.Query("q")
	if err := utils.ValidateText(q, "q", utils.MaxQueryLength, false); err != nil {
		return req, badRequest(err.Error())
	}
	req.search.Query = h.sanitizer.Text(q)

	page, err := intParam(c, "page", 1)
	if err != nil {
		return req, err
	}
	pageSize, err := intParam(c, "page_size", h.defaultPageSize)
	if err != nil {
		return req, err
	}
	req.search.Page, req.search.PageSize = page, pageSize

	req.sort.Field = c.Query("sort")
	switch order := strings.ToLower(c.DefaultQuery("order", "asc")); order {
	case "asc", "desc":
		req.sort.Direction = query.Direction(order)
	default:
		return req, badRequest("order must be asc or desc")
	}

	if status := c.Query("status"); status != "" {
		s := types.AgentStatus(strings.ToLower(status))
		if !s.Valid() {
			return req, badRequest("unknown status " + strconv.Quote(status))
		}
		req.filter.Status = s
	}
	req.filter.Type = h.sanitizer.Text(c.Query("type"))
	req.filter.Capabilities = splitList(c.Query("capabilities"))

	if req.filter.Verified, err = boolParam(c, "verified"); err != nil {
		return req, err
	}
	if req.filter.OnChain, err = boolParam(c, "on_chain"); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}

func boolParam(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badRequest(name + " must be true or false")
	}
	return &b, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// agentID reads and checks the :id path parameter
func agentID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "id"); err != nil {
		return "", badRequest(err.Error())
	}
	return id, nil
}
