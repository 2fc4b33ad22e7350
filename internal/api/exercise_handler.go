package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseRequest defines the expected JSON for creating or updating an exercise.
type ExerciseRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	MuscleGroup      string `json:"muscleGroup" binding:"omitempty"`      // e.g., "Chest", "Legs"
	ExecutionTechnic string `json:"executionTechnic" binding:"omitempty"` // How to do it
	Difficulty       string `json:"difficulty" binding:"omitempty"`       // e.g., "Novice", "Medium", "Advanced"
	VideoRef         string `json:"videoRef" binding:"omitempty"`         // URL or storage key
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:             r.Name,
		Description:      r.Description,
		MuscleGroup:      r.MuscleGroup,
		ExecutionTechnic: r.ExecutionTechnic,
		Difficulty:       r.Difficulty,
		VideoRef:         r.VideoRef,
	}
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	CoachID          string    `json:"coachId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	MuscleGroup      string    `json:"muscleGroup,omitempty"`
	ExecutionTechnic string    `json:"executionTechnic,omitempty"`
	Difficulty       string    `json:"difficulty,omitempty"`
	VideoRef         string    `json:"videoRef,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type VideoUploadURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
}

type UploadResponse struct {
	ID          string    `json:"id"`
	ExerciseID  string    `json:"exerciseId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		CoachID:          ex.CoachID.Hex(),
		Name:             ex.Name,
		Description:      ex.Description,
		MuscleGroup:      ex.MuscleGroup,
		ExecutionTechnic: ex.ExecutionTechnic,
		Difficulty:       ex.Difficulty,
		VideoRef:         ex.VideoRef,
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func MapUploadToResponse(u *domain.Upload) UploadResponse {
	return UploadResponse{
		ID:          u.ID.Hex(),
		ExerciseID:  u.ExerciseID.Hex(),
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Size:        u.Size,
		UploadedAt:  u.UploadedAt,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Adds an exercise to the authenticated coach's library.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a coach)"
// @Failure 409 {object} gin.H "Conflict (name already in library)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), coachID, req.toInput())
	if err != nil {
		abortWithServiceError(c, err, "Failed to create exercise.")
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetCoachExercises godoc
// @Summary Get exercises for the authenticated coach
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Router /exercises [get]
func (h *ExerciseHandler) GetCoachExercises(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exercises, err := h.exerciseService.ListExercises(c.Request.Context(), coachID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get one library exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 403 {object} gin.H "Exercise belongs to another coach"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), coachID, exerciseID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise godoc
// @Summary Update a library exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} ExerciseResponse
// @Router /exercises/{exerciseId} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), coachID, exerciseID, req.toInput())
	if err != nil {
		abortWithServiceError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete a library exercise
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204 "Deleted"
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		abortWithServiceError(c, err, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestVideoUploadURL godoc
// @Summary Get a pre-signed URL to upload a demo video
// @Description The client PUTs the file to uploadUrl, then confirms with the returned objectKey.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param request body VideoUploadURLRequest true "File details"
// @Success 200 {object} service.VideoUploadTicket
// @Failure 503 {object} gin.H "File storage not configured"
// @Router /exercises/{exerciseId}/video/upload-url [post]
func (h *ExerciseHandler) RequestVideoUploadURL(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req VideoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ticket, err := h.exerciseService.RequestVideoUploadURL(c.Request.Context(), coachID, exerciseID, req.FileName, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err, "Failed to prepare video upload.")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ConfirmVideoUpload godoc
// @Summary Confirm a finished video upload
// @Description Records the upload and makes it the exercise's video.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param request body ConfirmUploadRequest true "Upload details"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} gin.H "Object missing or not issued for this exercise"
// @Router /exercises/{exerciseId}/video/confirm [post]
func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), coachID, exerciseID, service.ConfirmUploadInput{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to confirm video upload.")
		return
	}
	c.JSON(http.StatusCreated, MapUploadToResponse(upload))
}

// ListVideoUploads godoc
// @Summary List uploaded videos of an exercise, newest first
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {array} UploadResponse
// @Router /exercises/{exerciseId}/video/uploads [get]
func (h *ExerciseHandler) ListVideoUploads(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	uploads, err := h.exerciseService.ListVideoUploads(c.Request.Context(), coachID, exerciseID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to list uploads.")
		return
	}
	out := make([]UploadResponse, len(uploads))
	for i := range uploads {
		out[i] = MapUploadToResponse(&uploads[i])
	}
	c.JSON(http.StatusOK, out)
}
