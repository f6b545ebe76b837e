package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds surfaced at the HTTP boundary. Every error body is the uniform
// {error, message} shape; internal failure detail stays in the logs.
const (
	kindUnauthorized = "UNAUTHORIZED"
	kindNotFound     = "NOT_FOUND"
	kindBadRequest   = "BAD_REQUEST"
	kindConflict     = "CONFLICT"
	kindInternal     = "INTERNAL_ERROR"
)

func errorBody(kind, message string) gin.H {
	return gin.H{"error": kind, "message": message}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, errorBody(kindUnauthorized, "Authentication required"))
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, errorBody(kindNotFound, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody(kindBadRequest, message))
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, errorBody(kindInternal, message))
}
