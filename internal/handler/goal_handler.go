package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/model"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/repository"
)

type GoalHandler struct {
	repo   *repository.WeeklyGoalRepository
	logger *zap.Logger
}

func NewGoalHandler(repo *repository.WeeklyGoalRepository, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{repo: repo, logger: logger}
}

type createGoalRequest struct {
	Content   string `json:"content" binding:"required"`
	WeekStart string `json:"week_start" binding:"required"` // YYYY-MM-DD
}

func (h *GoalHandler) Create(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	goal := &model.WeeklyGoal{
		ProjectID: projectID,
		MemberID:  c.GetInt("member_id"),
		Content:   req.Content,
		WeekStart: weekStart,
	}
	id, err := h.repo.Insert(c.Request.Context(), goal)
	if err != nil {
		h.logger.Error("Create weekly goal failed", zap.Int("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create weekly goal"})
		return
	}
	goal.ID = id

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

func (h *GoalHandler) List(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	goals, err := h.repo.ListByProjectID(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("List weekly goals failed", zap.Int("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch weekly goals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}
