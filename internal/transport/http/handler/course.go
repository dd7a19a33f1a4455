package handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursegen/internal/app"
	"coursegen/internal/transport/http/middleware"
	"coursegen/internal/transport/http/response"
)

// multipartOverhead bounds the form framing read on top of the file itself.
const multipartOverhead = 1 << 20

type CourseHandler struct {
	courseService *app.CourseService
	maxBytes      int64
}

func NewCourseHandler(courseService *app.CourseService, maxBytes int64) *CourseHandler {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &CourseHandler{courseService: courseService, maxBytes: maxBytes}
}

// Upload accepts a multipart form with "file", analyzes it and returns the new
// course. Q&A and flashcards keep generating after the response is sent.
func (h *CourseHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, "file too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, "file too large")
		return
	}

	data, err := readFormFile(file)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read file failed")
		return
	}
	if len(data) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "empty file")
		return
	}

	result, err := h.courseService.Upload(c.Request.Context(), app.UploadInput{
		UserID:    userID,
		FileName:  file.Filename,
		MediaType: detectMediaType(file.Header.Get("Content-Type"), data),
		Data:      data,
	})
	if err != nil {
		writeCourseError(c, err, "upload course failed")
		return
	}

	response.OK(c, result)
}

func (h *CourseHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	courses, err := h.courseService.ListCourses(c.Request.Context(), userID)
	if err != nil {
		writeCourseError(c, err, "list courses failed")
		return
	}

	response.OK(c, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeCourseError(c, err, "get course failed")
		return
	}

	response.OK(c, course)
}

func (h *CourseHandler) Events(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	events, err := h.courseService.ListEnrichmentEvents(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeCourseError(c, err, "list enrichment events failed")
		return
	}

	response.OK(c, events)
}

func writeCourseError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, response.CodeCourseNotFound, err.Error())
	case errors.Is(err, app.ErrModelUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeModelUnavailable, "model unavailable")
	case errors.Is(err, app.ErrMalformedResponse):
		response.Error(c, http.StatusBadGateway, response.CodeMalformedResponse, "model returned a malformed response")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// detectMediaType trusts the part header unless it is missing or generic,
// then sniffs the content. Parameters such as charset are dropped.
func detectMediaType(declared string, data []byte) string {
	mediaType := parseMediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = parseMediaType(http.DetectContentType(data))
	}
	return mediaType
}

func parseMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return ""
	}
	return mediaType
}
