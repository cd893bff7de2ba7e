package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/linkforge/linkforge-backend/internal/services"
	"net/http"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportCSV accepts a multipart upload of a LinkedIn connections export or a
// target-list CSV. The "kind" form field selects which.
func (ih *ImportHandler) ImportCSV(c *gin.Context) {
	kind := c.PostForm("kind")
	if kind == "" {
		kind = services.ImportKindConnections
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer file.Close()
	result, err := ih.importService.ImportCSV(c.Request.Context(), file, kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
