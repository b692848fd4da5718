package controller

import (
	"errors"
	"net/http"

	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	CourseService *service.CourseService
}

func NewMaterialController(courseService *service.CourseService) *MaterialController {
	return &MaterialController{CourseService: courseService}
}

// Upload accepts either a multipart file under "file" or a "doc_path" form
// field naming an object already in storage, then runs the keyword
// pipeline.
func (c *MaterialController) Upload(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	title := ctx.PostForm("title")

	file, header, err := ctx.Request.FormFile("file")
	if err == nil {
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = util.MimeOctetStream
		}

		result, err := c.CourseService.UploadMaterial(
			ctx.Request.Context(), courseID, title, header.Filename, contentType, file, header.Size)
		c.respond(ctx, result, err)
		return
	}

	docPath := ctx.PostForm("doc_path")
	if docPath == "" {
		util.BadRequest(ctx, "either a file or doc_path is required")
		return
	}

	result, err := c.CourseService.ParseStoredMaterial(ctx.Request.Context(), courseID, title, docPath)
	c.respond(ctx, result, err)
}

func (c *MaterialController) respond(ctx *gin.Context, result *service.UploadResult, err error) {
	switch {
	case err == nil:
		util.Created(ctx, result)
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx, "Course not found")
	case errors.Is(err, util.ErrPipelineUnavailable):
		util.Error(ctx, http.StatusBadGateway, "Extraction pipeline unavailable")
	case errors.Is(err, util.ErrExtraction):
		util.Error(ctx, http.StatusUnprocessableEntity, "Could not extract keywords from document")
	default:
		util.LogInternalError(ctx, err)
	}
}

func (c *MaterialController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	material, err := c.CourseService.GetMaterial(id)
	if err != nil {
		if errors.Is(err, util.ErrMaterialNotFound) {
			util.NotFound(ctx, "Material not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, material)
}

func (c *MaterialController) ListForCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))

	materials, err := c.CourseService.ListMaterials(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, materials)
}
