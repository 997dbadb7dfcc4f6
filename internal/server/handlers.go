package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"assist/internal/domain"
	"assist/internal/service"
)

type handler struct {
	video     VideoPort
	letter    LetterPort
	maxUpload int64
}

type summaryRequest struct {
	URL string `json:"url" binding:"required"`
}

type quizRequest struct {
	URL          string `json:"url" binding:"required"`
	NumQuestions int    `json:"num_questions" binding:"omitempty,min=3,max=15"`
}

type summaryResponse struct {
	VideoID string `json:"video_id"`
	Summary string `json:"summary"`
	HTML    string `json:"html"`
	Chunks  int    `json:"chunks"`
}

type quizResponse struct {
	VideoID string      `json:"video_id"`
	Quiz    domain.Quiz `json:"quiz"`
	Chunks  int         `json:"chunks"`
}

func (h *handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) Summary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid", "Please enter a YouTube URL.", "")
		return
	}
	res, err := h.video.Summarize(c.Request.Context(), req.URL)
	if err != nil {
		handleError(c, err, domain.TaskSummarize)
		return
	}
	success(c, summaryResponse{
		VideoID: res.VideoID,
		Summary: res.Summary,
		HTML:    markdownHTML(res.Summary),
		Chunks:  res.Chunks,
	})
}

func (h *handler) Quiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid", "Please enter a YouTube URL and between 3 and 15 questions.", "")
		return
	}
	res, err := h.video.Quiz(c.Request.Context(), req.URL, req.NumQuestions)
	if err != nil {
		handleError(c, err, domain.TaskQuiz)
		return
	}
	success(c, quizResponse{VideoID: res.VideoID, Quiz: res.Quiz, Chunks: res.Chunks})
}

func (h *handler) Letter(c *gin.Context) {
	res, ok := h.generateLetter(c)
	if !ok {
		return
	}
	success(c, res)
}

func (h *handler) LetterPDF(c *gin.Context) {
	res, ok := h.generateLetter(c)
	if !ok {
		return
	}
	data, err := res.PDF()
	if err != nil {
		handleError(c, err, domain.TaskLetter)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cover_letter.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// generateLetter binds the multipart form, reads the optional résumé upload
// and runs the letter service. It writes the error response itself.
func (h *handler) generateLetter(c *gin.Context) (*service.LetterResult, bool) {
	var req service.LetterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid", "Malformed form data.", err.Error())
		return nil, false
	}

	fh, err := c.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		fail(c, http.StatusBadRequest, "invalid", "Could not read the résumé upload.", "")
		return nil, false
	default:
		if fh.Size > h.maxUpload {
			fail(c, http.StatusRequestEntityTooLarge, "too_large", fmt.Sprintf("Résumé exceeds %s.", formatUploadLimit(h.maxUpload)), "")
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid", "Could not read the résumé upload.", "")
			return nil, false
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid", "Could not read the résumé upload.", "")
			return nil, false
		}
		req.ResumeName = fh.Filename
		req.ResumeData = data
	}

	res, err := h.letter.Generate(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, domain.TaskLetter)
		return nil, false
	}
	return res, true
}

func markdownHTML(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func formatUploadLimit(n int64) string {
	const mb = 1024 * 1024
	value := n / mb
	if value <= 0 {
		value = 1
	}
	return fmt.Sprintf("%dMB", value)
}
