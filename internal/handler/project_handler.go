package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/rbac"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/project"
)

type ProjectHandler struct {
	service *project.Service
	deleter *project.Deleter
	logger  *zap.Logger
}

func NewProjectHandler(service *project.Service, deleter *project.Deleter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, deleter: deleter, logger: logger}
}

type createProjectRequest struct {
	Title        string `json:"title" binding:"required"`
	TargetDate   string `json:"target_date"` // YYYY-MM-DD, optional
	SeedTemplate bool   `json:"seed_template"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var targetDate *time.Time
	if req.TargetDate != "" {
		t, err := time.Parse("2006-01-02", req.TargetDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_date must be YYYY-MM-DD"})
			return
		}
		targetDate = &t
	}

	memberID := c.GetInt("member_id")
	p, err := h.service.CreateProject(c.Request.Context(), req.Title, targetDate, memberID, req.SeedTemplate)
	if err != nil {
		h.logger.Error("Create project failed", zap.Int("member_id", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) List(c *gin.Context) {
	memberID := c.GetInt("member_id")

	projects, err := h.service.ListProjects(c.Request.Context(), memberID)
	if err != nil {
		h.logger.Error("List projects failed", zap.Int("member_id", memberID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Get project failed", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": detail})
}

// Delete runs the cascading deletion. The response is success-or-error only;
// there is no partial-success signaling.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	memberID := c.GetInt("member_id")
	err := h.deleter.Delete(c.Request.Context(), id, memberID)
	if err != nil {
		var denied *rbac.PermissionDeniedError
		switch {
		case errors.Is(err, project.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		case errors.As(err, &denied):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the project creator or an admin can delete a project"})
		default:
			h.logger.Error("Cascading delete failed",
				zap.Int("project_id", id),
				zap.Int("member_id", memberID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type submissionStatusRequest struct {
	SubmissionStatus string `json:"submission_status" binding:"required"`
}

func (h *ProjectHandler) UpdateSubmissionStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req submissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateSubmissionStatus(c.Request.Context(), id, req.SubmissionStatus)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		// Invalid enum value is a validation error, not a server fault.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type archiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

func (h *ProjectHandler) Archive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.SetArchived(c.Request.Context(), id, *req.Archived)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type assignMemberRequest struct {
	MemberID int    `json:"member_id" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *ProjectHandler) AssignMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req assignMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.AssignMember(c.Request.Context(), id, req.MemberID, req.Role)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Assign member failed", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type addMilestoneRequest struct {
	Title  string `json:"title" binding:"required"`
	Weight int    `json:"weight" binding:"required"`
}

func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.AddMilestone(c.Request.Context(), id, req.Title, req.Weight)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"milestone": m})
}

type milestoneWeightRequest struct {
	Weight int `json:"weight" binding:"required"`
}

func (h *ProjectHandler) UpdateMilestoneWeight(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req milestoneWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.UpdateMilestoneWeight(c.Request.Context(), id, req.Weight)
	if err != nil {
		if errors.Is(err, project.ErrMilestoneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "milestone not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProjectHandler) RemoveMilestone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.service.RemoveMilestone(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrMilestoneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "milestone not found"})
			return
		}
		h.logger.Error("Remove milestone failed", zap.Int("milestone_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove milestone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type toggleChecklistRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *ProjectHandler) ToggleChecklistItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req toggleChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID := c.GetInt("member_id")
	overall, err := h.service.ToggleChecklistItem(c.Request.Context(), id, *req.Completed, memberID)
	if err != nil {
		if errors.Is(err, project.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "checklist item not found"})
			return
		}
		h.logger.Error("Toggle checklist item failed", zap.Int("item_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update checklist item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "overall_progress": overall})
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
