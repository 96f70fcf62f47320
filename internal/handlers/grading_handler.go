package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ielts-center/grading-service/internal/services"
	"github.com/ielts-center/grading-service/internal/utils"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	exportService  services.ExportService
	validator      *utils.Validator
}

type GradeSubmissionRequest struct {
	GradedBy string `json:"graded_by" validate:"omitempty,max=100"`
}

func NewGradingHandler(
	gradingService services.GradingService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		exportService:  exportService,
		validator:      validator,
	}
}

// GradeSubmission grades a submission against its test's question bank
// @Summary Grade submission
// @Description Grades a submitted answer sheet and persists the result. With dry_run=true the result is computed but not saved.
// @Tags grading
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param dry_run query bool false "Compute without persisting"
// @Param body body GradeSubmissionRequest false "Grading metadata"
// @Success 200 {object} models.GradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /grading/submissions/{id} [post]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	submissionID := c.Param("id")
	if submissionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Submission ID is required",
		})
		return
	}

	h.LogRequest(c, "Grading submission", "submission_id", submissionID)

	var req GradeSubmissionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}

		if err := h.validator.Validate(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Details: err.Error(),
			})
			return
		}
	}

	dryRun, _ := strconv.ParseBool(c.Query("dry_run"))
	if dryRun {
		result, err := h.gradingService.GradeSubmission(c.Request.Context(), submissionID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := h.gradingService.GradeAndSave(c.Request.Context(), submissionID, h.resolveGradedBy(c, req.GradedBy))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the stored grading result for a submission
// @Summary Get grading result
// @Description Returns the persisted grading result for a submission
// @Tags results
// @Produce json
// @Param submission_id path string true "Submission ID"
// @Success 200 {object} models.ExamResult
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /results/{submission_id} [get]
func (h *GradingHandler) GetResult(c *gin.Context) {
	submissionID := c.Param("submission_id")
	if submissionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Submission ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting grading result", "submission_id", submissionID)

	result, err := h.gradingService.GetResult(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportTestResults exports all graded results for a test as an Excel workbook
// @Summary Export test results
// @Description Exports all graded results for a test as an .xlsx file
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param test_id path string true "Test ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tests/{test_id}/results/export [get]
func (h *GradingHandler) ExportTestResults(c *gin.Context) {
	testID := c.Param("test_id")
	if testID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Test ID is required",
		})
		return
	}

	h.LogRequest(c, "Exporting test results", "test_id", testID)

	data, err := h.exportService.ExportTestResults(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results_%s.xlsx", testID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// InvalidateQuestionBank drops the cached question bank for a test
// @Summary Invalidate question bank cache
// @Description Removes the cached question bank so the next grading run reloads it from the database
// @Tags grading
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /tests/{test_id}/question-bank/cache [delete]
func (h *GradingHandler) InvalidateQuestionBank(c *gin.Context) {
	testID := c.Param("test_id")
	if testID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Test ID is required",
		})
		return
	}

	h.LogRequest(c, "Invalidating question bank cache", "test_id", testID)

	if err := h.gradingService.InvalidateQuestionBank(c.Request.Context(), testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question bank cache invalidated",
	})
}

// InvalidateAllQuestionBanks drops every cached question bank
// @Summary Invalidate all question bank caches
// @Description Removes every cached question bank, e.g. after a bulk answer-key import
// @Tags grading
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /question-banks/cache [delete]
func (h *GradingHandler) InvalidateAllQuestionBanks(c *gin.Context) {
	h.LogRequest(c, "Invalidating all question bank caches")

	if err := h.gradingService.InvalidateAllQuestionBanks(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question bank caches invalidated",
	})
}

// Helper methods

func (h *GradingHandler) resolveGradedBy(c *gin.Context, requested string) string {
	if requested != "" {
		return requested
	}
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok && id != "" {
			return id
		}
	}
	return "system"
}

func (h *GradingHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var gradingError *services.GradingError
	if errors.As(err, &gradingError) {
		h.LogError(c, err, "Grading failed",
			"submission_id", gradingError.SubmissionID,
			"stage", gradingError.Stage)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Grading failed",
			Details: map[string]interface{}{
				"submission_id": gradingError.SubmissionID,
				"stage":         gradingError.Stage,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Submission not found",
		})
	case errors.Is(err, services.ErrQuestionBankNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question bank not found for test",
		})
	case errors.Is(err, services.ErrResultNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Grading result not found",
		})
	case errors.Is(err, services.ErrSubmissionNotGradable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Submission has no answers to grade",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
