package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Company serves the connected QuickBooks company profile.
func (s *Server) Company(c *gin.Context) {
	info, err := s.qboClient.Company(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
