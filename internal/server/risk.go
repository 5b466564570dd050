package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	riskdomain "github.com/smallledger/arview/internal/risk/domain"
)

// TopCustomers serves the ranked customer risk list.
func (s *Server) TopCustomers(c *gin.Context) {
	mode, err := riskdomain.ParseRankMode(c.Query("mode"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	top := intParam(c, "top", 10, 1, 100)

	risks, err := s.riskSvc.TopCustomers(c.Request.Context(), mode, top)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, risks)
}

// OverdueByDueDate serves the overdue-by-due-date trend buckets.
func (s *Server) OverdueByDueDate(c *gin.Context) {
	from, err := dateParam(c, "from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := dateParam(c, "to")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	buckets, err := s.kpiSvc.OverdueByDueDate(c.Request.Context(), kpidomain.OverdueByDueDateRequest{
		From:        from,
		To:          to,
		Granularity: kpidomain.ParseGranularity(c.DefaultQuery("gran", "week")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}
