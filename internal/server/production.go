package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/internal/production/session"
)

// GetProductionByDate returns a stored day's flat records, or an empty
// body with 404 semantics avoided: absence is a valid "new entry" state.
func (s *Server) GetProductionByDate(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		AbortWithError(c, proddomain.ErrInvalidDate)
		return
	}

	day, err := s.prodsvc.GetByDate(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if day == nil {
		c.JSON(http.StatusOK, gin.H{"date": date, "exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Date, "exists": true, "day": day})
}

func (s *Server) ListProductionDays(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	days, err := s.prodsvc.ListDays(c.Request.Context(), proddomain.ListDaysRequest{Limit: limit})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (s *Server) GetMillConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.mill.Get())
}

func (s *Server) OpenSession(c *gin.Context) {
	var req session.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	snap, err := s.sessions.Open(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (s *Server) GetSession(c *gin.Context) {
	snap, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type setOrdersRequest struct {
	SelectedOrders []string `json:"selectedOrders"`
}

func (s *Server) SetSessionOrders(c *gin.Context) {
	var req setOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	snap, err := s.sessions.SetOrders(c.Request.Context(), c.Param("id"), req.SelectedOrders)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type updateEntriesRequest struct {
	Entries []proddomain.MachineShiftEntry `json:"entries"`
}

type updateSpinningRequest struct {
	Entries []proddomain.SpinningEntry `json:"entries"`
}

// UpdateSection replaces a section's entries wholesale; the client always
// sends the full array, never a partial patch.
func (s *Server) UpdateSection(c *gin.Context) {
	sectionID, ok := proddomain.ParseSection(c.Param("section"))
	if !ok {
		AbortWithError(c, proddomain.ErrUnknownSection)
		return
	}

	if sectionID == proddomain.SectionSpinning {
		var req updateSpinningRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		snap, err := s.sessions.UpdateSpinning(c.Request.Context(), c.Param("id"), req.Entries)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
		return
	}

	var req updateEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	snap, err := s.sessions.UpdateSection(c.Request.Context(), c.Param("id"), sectionID, req.Entries)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) SaveSection(c *gin.Context) {
	sectionID, ok := proddomain.ParseSection(c.Param("section"))
	if !ok {
		AbortWithError(c, proddomain.ErrUnknownSection)
		return
	}

	snap, err := s.sessions.SaveSection(c.Request.Context(), c.Param("id"), sectionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) ResetSection(c *gin.Context) {
	sectionID, ok := proddomain.ParseSection(c.Param("section"))
	if !ok {
		AbortWithError(c, proddomain.ErrUnknownSection)
		return
	}

	snap, err := s.sessions.ResetSection(c.Request.Context(), c.Param("id"), sectionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) ResetSession(c *gin.Context) {
	snap, err := s.sessions.ResetAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) SubmitSession(c *gin.Context) {
	ack, err := s.sessions.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}
