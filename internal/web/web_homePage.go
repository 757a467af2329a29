package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const htmlContentType = "text/html; charset=utf-8"

// homePage serves the webinar registration page. Query and headers are ignored.
func (s *WebServer) homePage(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, webinarPage)
}

// homePageHead answers HEAD / with the headers homePage would send
func (s *WebServer) homePageHead(c *gin.Context) {
	c.Header("Content-Type", htmlContentType)
	c.Header("Content-Length", strconv.Itoa(len(webinarPage)))
	c.Status(http.StatusOK)
}
