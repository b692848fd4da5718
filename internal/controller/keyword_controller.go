package controller

import (
	"errors"

	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type KeywordController struct {
	KeywordService *service.KeywordService
}

func NewKeywordController(keywordService *service.KeywordService) *KeywordController {
	return &KeywordController{KeywordService: keywordService}
}

func (c *KeywordController) GetHierarchy(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	hierarchy, err := c.KeywordService.GetHierarchy(id)
	if err != nil {
		if errors.Is(err, util.ErrHierarchyNotFound) {
			util.NotFound(ctx, "Keyword hierarchy not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, hierarchy)
}

// GetHierarchyKeywords returns every keyword of a hierarchy in pre-order,
// root first.
func (c *KeywordController) GetHierarchyKeywords(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	keywords, err := c.KeywordService.GetHierarchyKeywords(id)
	if err != nil {
		if errors.Is(err, util.ErrHierarchyNotFound) {
			util.NotFound(ctx, "Keyword hierarchy not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, keywords)
}

func (c *KeywordController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	keyword, err := c.KeywordService.GetKeyword(id)
	if err != nil {
		if errors.Is(err, util.ErrKeywordNotFound) {
			util.NotFound(ctx, "Keyword not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, keyword)
}

type UpdateKeywordRequest struct {
	Name       *string `json:"name"`
	Definition *string `json:"definition"`
}

func (c *KeywordController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req UpdateKeywordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	keyword, err := c.KeywordService.UpdateKeyword(id, service.KeywordUpdate{
		Name:       req.Name,
		Definition: req.Definition,
	})
	if err != nil {
		if errors.Is(err, util.ErrKeywordNotFound) {
			util.NotFound(ctx, "Keyword not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, keyword)
}
