package api

import (
	"alcyxob/coaching-app/internal/completion"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AthleteHandler struct {
	athleteService service.AthleteService
}

func NewAthleteHandler(athleteService service.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

// --- DTOs ---

type SetDTO struct {
	SetNumber int    `json:"setNumber" binding:"min=0"`
	Weight    string `json:"weight"`
	Reps      string `json:"reps"`
	Completed bool   `json:"completed"`
}

// SaveSetsRequest replaces the whole set list of an exercise. Seq orders
// writes from the same client; 0 means unsequenced.
type SaveSetsRequest struct {
	Seq  int64    `json:"seq" binding:"min=0"`
	Sets []SetDTO `json:"sets" binding:"dive"`
}

type SetLogResponse struct {
	WorkoutID  string             `json:"workoutId"`
	ExerciseID string             `json:"exerciseId"`
	Seq        int64              `json:"seq"`
	Sets       []domain.SetRecord `json:"sets"`
}

type SaveSetsResponse struct {
	Applied          bool                      `json:"applied"`
	Sets             []domain.SetRecord        `json:"sets"`
	Exercise         completion.ExerciseStatus `json:"exercise"`
	WorkoutCompleted bool                      `json:"workoutCompleted"`
}

type AthleteWorkoutResponse struct {
	WorkoutResponse
	Completed bool `json:"completed"`
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

func nonNilRecords(in []domain.SetRecord) []domain.SetRecord {
	if in == nil {
		return []domain.SetRecord{}
	}
	return in
}

// --- Handler Methods ---

// GetMyWorkouts godoc
// @Summary List the athlete's calendar
// @Description Own and team workouts in the date range, each with its completion flag.
// @Tags Athlete
// @Produce json
// @Security BearerAuth
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {array} AthleteWorkoutResponse
// @Router /athlete/workouts [get]
func (h *AthleteHandler) GetMyWorkouts(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}

	workouts, err := h.athleteService.ListMyWorkouts(c.Request.Context(), athleteID, c.Query("from"), c.Query("to"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve workouts.")
		return
	}
	out := make([]AthleteWorkoutResponse, len(workouts))
	for i := range workouts {
		out[i] = AthleteWorkoutResponse{
			WorkoutResponse: MapWorkoutToResponse(&workouts[i].Workout),
			Completed:       workouts[i].Completed,
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetMyWorkout godoc
// @Summary Get one workout the athlete tracks
// @Tags Athlete
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 403 {object} gin.H "Workout belongs to someone else"
// @Router /athlete/workouts/{workoutId} [get]
func (h *AthleteHandler) GetMyWorkout(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	workout, err := h.athleteService.GetMyWorkout(c.Request.Context(), athleteID, workoutID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// SaveSets godoc
// @Summary Replace the logged sets of an exercise
// @Description A write with a seq lower than the last applied one is ignored and reported with applied=false.
// @Tags Athlete
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exerciseId path string true "Workout exercise ID"
// @Param request body SaveSetsRequest true "Full set list"
// @Success 200 {object} SaveSetsResponse
// @Failure 400 {object} gin.H "Invalid set numbering"
// @Failure 404 {object} gin.H "Workout or exercise not found"
// @Router /athlete/workouts/{workoutId}/exercises/{exerciseId}/sets [put]
func (h *AthleteHandler) SaveSets(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	var req SaveSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	sets := make([]service.SetInput, len(req.Sets))
	for i, s := range req.Sets {
		sets[i] = service.SetInput{SetNumber: s.SetNumber, Weight: s.Weight, Reps: s.Reps, Completed: s.Completed}
	}
	result, err := h.athleteService.SaveSets(c.Request.Context(), service.SaveSetsInput{
		WorkoutID:  workoutID,
		ExerciseID: c.Param("exerciseId"),
		AthleteID:  athleteID,
		Seq:        req.Seq,
		Sets:       sets,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to save sets.")
		return
	}
	c.JSON(http.StatusOK, SaveSetsResponse{
		Applied:          result.Applied,
		Sets:             nonNilRecords(result.Sets),
		Exercise:         result.Exercise,
		WorkoutCompleted: result.WorkoutCompleted,
	})
}

// GetSets godoc
// @Summary Get the logged sets of an exercise
// @Tags Athlete
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exerciseId path string true "Workout exercise ID"
// @Success 200 {object} SetLogResponse
// @Router /athlete/workouts/{workoutId}/exercises/{exerciseId}/sets [get]
func (h *AthleteHandler) GetSets(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	setLog, err := h.athleteService.GetSets(c.Request.Context(), athleteID, workoutID, c.Param("exerciseId"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve sets.")
		return
	}
	c.JSON(http.StatusOK, SetLogResponse{
		WorkoutID:  setLog.WorkoutID.Hex(),
		ExerciseID: setLog.ExerciseID,
		Seq:        setLog.Seq,
		Sets:       nonNilRecords(setLog.Sets),
	})
}

// GetCompletionStatus godoc
// @Summary Completion status of every exercise in a workout
// @Tags Athlete
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} CompletionResponse
// @Router /athlete/workouts/{workoutId}/completion [get]
func (h *AthleteHandler) GetCompletionStatus(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	report, err := h.athleteService.GetCompletionStatus(c.Request.Context(), workoutID, athleteID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to evaluate completion.")
		return
	}
	c.JSON(http.StatusOK, MapCompletionToResponse(report))
}

// GetExerciseVideo godoc
// @Summary Get a playable URL for an exercise's video
// @Description Storage-backed videos get a short-lived pre-signed URL.
// @Tags Athlete
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exerciseId path string true "Workout exercise ID"
// @Success 200 {object} VideoURLResponse
// @Failure 404 {object} gin.H "Exercise has no video"
// @Router /athlete/workouts/{workoutId}/exercises/{exerciseId}/video [get]
func (h *AthleteHandler) GetExerciseVideo(c *gin.Context) {
	athleteID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	url, err := h.athleteService.ExerciseVideoURL(c.Request.Context(), athleteID, workoutID, c.Param("exerciseId"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to resolve video.")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, VideoURLResponse{URL: url})
}
