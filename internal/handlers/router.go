package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ielts-center/grading-service/internal/services"
	"github.com/ielts-center/grading-service/internal/utils"
)

type HandlerManager struct {
	gradingHandler *GradingHandler
}

func NewHandlerManager(
	gradingService services.GradingService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		gradingHandler: NewGradingHandler(gradingService, exportService, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		grading := v1.Group("/grading")
		{
			grading.POST("/submissions/:id", hm.gradingHandler.GradeSubmission)
		}

		results := v1.Group("/results")
		{
			results.GET("/:submission_id", hm.gradingHandler.GetResult)
		}

		tests := v1.Group("/tests")
		{
			tests.GET("/:test_id/results/export", hm.gradingHandler.ExportTestResults)
			tests.DELETE("/:test_id/question-bank/cache", hm.gradingHandler.InvalidateQuestionBank)
		}

		v1.DELETE("/question-banks/cache", hm.gradingHandler.InvalidateAllQuestionBanks)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "grading-service",
		})
	})
}
