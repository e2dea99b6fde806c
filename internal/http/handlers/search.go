package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/recipebook-backend/internal/http/response"
	"github.com/yungbote/recipebook-backend/internal/services"
)

type SearchHandler struct {
	searchService services.SearchService
}

func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// GET /api/search?ingredients=egg,flour&mode=any|all
// ingredients may also be repeated.
func (sh *SearchHandler) SearchByIngredients(c *gin.Context) {
	hits, err := sh.searchService.SearchByIngredients(requestDBC(c), c.QueryArray("ingredients"), c.Query("mode"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipes": hits})
}
