package api

import (
	"alcyxob/coaching-app/internal/completion"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoachHandler struct {
	coachService service.CoachService
}

func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- DTOs for Roster and Teams ---

type AddAthleteRequest struct {
	AthleteEmail string `json:"athleteEmail" binding:"required,email"`
}

type CreateTeamRequest struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"memberIds"`
}

type TeamMemberRequest struct {
	AthleteID string `json:"athleteId" binding:"required"`
}

type TeamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
}

func MapTeamToResponse(t *domain.Team) TeamResponse {
	return TeamResponse{
		ID:        t.ID.Hex(),
		Name:      t.Name,
		MemberIDs: hexIDs(t.MemberIDs),
		CreatedAt: t.CreatedAt,
	}
}

// --- DTOs for Workouts ---

// WorkoutExerciseDTO is one prescribed exercise. ID is empty for new exercises.
type WorkoutExerciseDTO struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name" binding:"required"`
	TargetSets   int    `json:"targetSets" binding:"min=0"`
	TargetReps   string `json:"targetReps"`
	TargetWeight string `json:"targetWeight,omitempty"`
	VideoRef     string `json:"videoRef,omitempty"`
}

// BlockDTO is a named group of exercises. ID is empty for new blocks.
type BlockDTO struct {
	ID        string               `json:"id,omitempty"`
	Name      string               `json:"name"`
	Exercises []WorkoutExerciseDTO `json:"exercises" binding:"dive"`
}

// WorkoutRequest creates or replaces a workout. Omitting both athleteId and
// teamId makes it a template.
type WorkoutRequest struct {
	Name      string     `json:"name" binding:"required"`
	Date      string     `json:"date"` // YYYY-MM-DD
	Notes     string     `json:"notes"`
	AthleteID *string    `json:"athleteId"`
	TeamID    *string    `json:"teamId"`
	Blocks    []BlockDTO `json:"blocks" binding:"dive"`
}

// CopyWorkoutRequest places a copy of a workout, or applies a template.
type CopyWorkoutRequest struct {
	AthleteID *string `json:"athleteId"`
	TeamID    *string `json:"teamId"`
	Date      string  `json:"date"`
	Name      string  `json:"name"`
}

type RecurringCopyRequest struct {
	SourceWorkoutIDs []string `json:"sourceWorkoutIds" binding:"required,min=1"`
	AthleteID        string   `json:"athleteId" binding:"required"`
	StartDate        string   `json:"startDate" binding:"required"`
	Weekdays         []int    `json:"weekdays" binding:"required,min=1"` // 0 = Sunday
	Weeks            int      `json:"weeks" binding:"required,min=1"`
}

type WorkoutResponse struct {
	ID        string     `json:"id"`
	CoachID   string     `json:"coachId"`
	AthleteID *string    `json:"athleteId,omitempty"`
	TeamID    *string    `json:"teamId,omitempty"`
	Name      string     `json:"name"`
	Date      string     `json:"date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Template  bool       `json:"template"`
	Blocks    []BlockDTO `json:"blocks"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CompletionResponse struct {
	WorkoutID string                               `json:"workoutId"`
	AthleteID string                               `json:"athleteId"`
	Completed bool                                 `json:"completed"`
	Exercises map[string]completion.ExerciseStatus `json:"exercises"`
}

func (r WorkoutRequest) toInput() (service.WorkoutInput, error) {
	owner, err := parseOwner(r.AthleteID, r.TeamID)
	if err != nil {
		return service.WorkoutInput{}, err
	}
	return service.WorkoutInput{
		Name:   r.Name,
		Date:   r.Date,
		Notes:  r.Notes,
		Owner:  owner,
		Blocks: blocksFromDTO(r.Blocks),
	}, nil
}

func parseOwner(athleteHex, teamHex *string) (domain.OwnerRef, error) {
	athleteID, err := optionalObjectID(athleteHex, "athleteId")
	if err != nil {
		return domain.OwnerRef{}, err
	}
	teamID, err := optionalObjectID(teamHex, "teamId")
	if err != nil {
		return domain.OwnerRef{}, err
	}
	return domain.OwnerRef{AthleteID: athleteID, TeamID: teamID}, nil
}

func blocksFromDTO(in []BlockDTO) []domain.Block {
	blocks := make([]domain.Block, len(in))
	for i, b := range in {
		exercises := make([]domain.WorkoutExercise, len(b.Exercises))
		for j, e := range b.Exercises {
			exercises[j] = domain.WorkoutExercise{
				ID:           e.ID,
				Name:         e.Name,
				TargetSets:   e.TargetSets,
				TargetReps:   e.TargetReps,
				TargetWeight: e.TargetWeight,
				VideoRef:     e.VideoRef,
			}
		}
		blocks[i] = domain.Block{ID: b.ID, Name: b.Name, Exercises: exercises}
	}
	return blocks
}

func blocksToDTO(in []domain.Block) []BlockDTO {
	blocks := make([]BlockDTO, len(in))
	for i, b := range in {
		exercises := make([]WorkoutExerciseDTO, len(b.Exercises))
		for j, e := range b.Exercises {
			exercises[j] = WorkoutExerciseDTO{
				ID:           e.ID,
				Name:         e.Name,
				TargetSets:   e.TargetSets,
				TargetReps:   e.TargetReps,
				TargetWeight: e.TargetWeight,
				VideoRef:     e.VideoRef,
			}
		}
		blocks[i] = BlockDTO{ID: b.ID, Name: b.Name, Exercises: exercises}
	}
	return blocks
}

// MapWorkoutToResponse converts a domain.Workout to its DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	return WorkoutResponse{
		ID:        w.ID.Hex(),
		CoachID:   w.CoachID.Hex(),
		AthleteID: hexPtr(w.AthleteID),
		TeamID:    hexPtr(w.TeamID),
		Name:      w.Name,
		Date:      w.Date,
		Notes:     w.Notes,
		Template:  w.IsTemplate(),
		Blocks:    blocksToDTO(w.Blocks),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	out := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		out[i] = MapWorkoutToResponse(&workouts[i])
	}
	return out
}

func MapCompletionToResponse(r *service.CompletionReport) CompletionResponse {
	return CompletionResponse{
		WorkoutID: r.WorkoutID.Hex(),
		AthleteID: r.AthleteID.Hex(),
		Completed: r.Completed,
		Exercises: r.Exercises,
	}
}

// --- Roster ---

// AddAthleteByEmail godoc
// @Summary Add an athlete to the coach's roster by email
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddAthleteRequest true "Athlete's email"
// @Success 200 {object} UserResponse "Athlete added"
// @Failure 400 {object} gin.H "User is not an athlete"
// @Failure 404 {object} gin.H "Athlete not found"
// @Failure 409 {object} gin.H "Athlete already has a coach"
// @Router /coach/athletes [post]
func (h *CoachHandler) AddAthleteByEmail(c *gin.Context) {
	var req AddAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	athlete, err := h.coachService.AddAthleteByEmail(c.Request.Context(), coachID, req.AthleteEmail)
	if err != nil {
		abortWithServiceError(c, err, "Failed to add athlete.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(athlete))
}

// GetManagedAthletes godoc
// @Summary Get the coach's athletes
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed athletes"
// @Router /coach/athletes [get]
func (h *CoachHandler) GetManagedAthletes(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	athletes, err := h.coachService.ListAthletes(c.Request.Context(), coachID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve managed athletes.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(athletes))
}

// --- Teams ---

// CreateTeam godoc
// @Summary Create a team from the coach's athletes
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTeamRequest true "Team details"
// @Success 201 {object} TeamResponse
// @Router /coach/teams [post]
func (h *CoachHandler) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	memberIDs := make([]primitive.ObjectID, 0, len(req.MemberIDs))
	for _, hex := range req.MemberIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid member ID format.")
			return
		}
		memberIDs = append(memberIDs, id)
	}

	team, err := h.coachService.CreateTeam(c.Request.Context(), coachID, req.Name, memberIDs)
	if err != nil {
		abortWithServiceError(c, err, "Failed to create team.")
		return
	}
	c.JSON(http.StatusCreated, MapTeamToResponse(team))
}

// GetTeams godoc
// @Summary List the coach's teams
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TeamResponse
// @Router /coach/teams [get]
func (h *CoachHandler) GetTeams(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	teams, err := h.coachService.ListTeams(c.Request.Context(), coachID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve teams.")
		return
	}
	out := make([]TeamResponse, len(teams))
	for i := range teams {
		out[i] = MapTeamToResponse(&teams[i])
	}
	c.JSON(http.StatusOK, out)
}

// AddTeamMember godoc
// @Summary Add an athlete to a team
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param request body TeamMemberRequest true "Athlete to add"
// @Success 200 {object} TeamResponse
// @Router /coach/teams/{teamId}/members [post]
func (h *CoachHandler) AddTeamMember(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := pathObjectID(c, "teamId")
	if !ok {
		return
	}
	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format.")
		return
	}

	team, err := h.coachService.AddTeamMember(c.Request.Context(), coachID, teamID, athleteID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to add team member.")
		return
	}
	c.JSON(http.StatusOK, MapTeamToResponse(team))
}

// RemoveTeamMember godoc
// @Summary Remove an athlete from a team
// @Description Logged sets of the athlete are kept.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param athleteId path string true "Athlete ID"
// @Success 200 {object} TeamResponse
// @Router /coach/teams/{teamId}/members/{athleteId} [delete]
func (h *CoachHandler) RemoveTeamMember(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := pathObjectID(c, "teamId")
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	team, err := h.coachService.RemoveTeamMember(c.Request.Context(), coachID, teamID, athleteID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to remove team member.")
		return
	}
	c.JSON(http.StatusOK, MapTeamToResponse(team))
}

// --- Workouts ---

// CreateWorkout godoc
// @Summary Create a workout or template
// @Description Exercise and block IDs are generated; library videos are attached by exercise name.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body WorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Athlete or team not managed by the coach"
// @Router /coach/workouts [post]
func (h *CoachHandler) CreateWorkout(c *gin.Context) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithServiceError(c, err, "Failed to create workout.")
		return
	}

	workout, err := h.coachService.CreateWorkout(c.Request.Context(), coachID, in)
	if err != nil {
		abortWithServiceError(c, err, "Failed to create workout.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// GetWorkouts godoc
// @Summary List the coach's workouts
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param athleteId query string false "Only this athlete's workouts (team workouts included)"
// @Param teamId query string false "Only this team's workouts"
// @Param templates query bool false "Only templates"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {array} WorkoutResponse
// @Router /coach/workouts [get]
func (h *CoachHandler) GetWorkouts(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	q := service.WorkoutQuery{From: c.Query("from"), To: c.Query("to")}
	var err error
	if v, present := c.GetQuery("athleteId"); present {
		if q.AthleteID, err = optionalObjectID(&v, "athleteId"); err != nil {
			abortWithServiceError(c, err, "Invalid workout filter.")
			return
		}
	}
	if v, present := c.GetQuery("teamId"); present {
		if q.TeamID, err = optionalObjectID(&v, "teamId"); err != nil {
			abortWithServiceError(c, err, "Invalid workout filter.")
			return
		}
	}
	if v := c.Query("templates"); v != "" {
		if q.Templates, err = strconv.ParseBool(v); err != nil {
			abortWithError(c, http.StatusBadRequest, "templates must be true or false")
			return
		}
	}

	workouts, err := h.coachService.ListWorkouts(c.Request.Context(), coachID, q)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve workouts.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout godoc
// @Summary Get one of the coach's workouts
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Router /coach/workouts/{workoutId} [get]
func (h *CoachHandler) GetWorkout(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	workout, err := h.coachService.GetWorkout(c.Request.Context(), coachID, workoutID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// UpdateWorkout godoc
// @Summary Replace a workout's content
// @Description Blocks and exercises sent with their existing IDs keep them, so logged sets stay attached.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param workout body WorkoutRequest true "Workout details"
// @Success 200 {object} WorkoutResponse
// @Router /coach/workouts/{workoutId} [put]
func (h *CoachHandler) UpdateWorkout(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithServiceError(c, err, "Failed to update workout.")
		return
	}

	workout, err := h.coachService.UpdateWorkout(c.Request.Context(), coachID, workoutID, in)
	if err != nil {
		abortWithServiceError(c, err, "Failed to update workout.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkout godoc
// @Summary Delete a workout with its logged sets
// @Tags Coach
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204 "Deleted"
// @Router /coach/workouts/{workoutId} [delete]
func (h *CoachHandler) DeleteWorkout(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	if err := h.coachService.DeleteWorkout(c.Request.Context(), coachID, workoutID); err != nil {
		abortWithServiceError(c, err, "Failed to delete workout.")
		return
	}
	c.Status(http.StatusNoContent)
}

// CopyWorkout godoc
// @Summary Copy a workout to a new date or owner
// @Description The copy gets fresh IDs and no logged sets.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Source workout ID"
// @Param request body CopyWorkoutRequest true "Destination"
// @Success 201 {object} WorkoutResponse
// @Router /coach/workouts/{workoutId}/copy [post]
func (h *CoachHandler) CopyWorkout(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	sourceID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	var req CopyWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	owner, err := parseOwner(req.AthleteID, req.TeamID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to copy workout.")
		return
	}

	workout, err := h.coachService.CopyWorkout(c.Request.Context(), coachID, sourceID, service.CopyInput{
		Owner: owner,
		Date:  req.Date,
		Name:  req.Name,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to copy workout.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ApplyTemplate godoc
// @Summary Schedule a template for an athlete or team
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Template ID"
// @Param request body CopyWorkoutRequest true "Owner and date"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Source is not a template"
// @Router /coach/workouts/{workoutId}/apply [post]
func (h *CoachHandler) ApplyTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	var req CopyWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	owner, err := parseOwner(req.AthleteID, req.TeamID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to apply template.")
		return
	}

	workout, err := h.coachService.ApplyTemplate(c.Request.Context(), coachID, templateID, owner, req.Date)
	if err != nil {
		abortWithServiceError(c, err, "Failed to apply template.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// CopyRecurring godoc
// @Summary Copy workouts onto a weekly pattern for an athlete
// @Description Creates one copy of every source per matching date. Either all copies are created or none.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecurringCopyRequest true "Sources and pattern"
// @Success 201 {array} WorkoutResponse "Copies ordered by date, then source order"
// @Failure 400 {object} gin.H "Invalid pattern"
// @Router /coach/recurring-copies [post]
func (h *CoachHandler) CopyRecurring(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req RecurringCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format.")
		return
	}
	sourceIDs := make([]primitive.ObjectID, len(req.SourceWorkoutIDs))
	for i, hex := range req.SourceWorkoutIDs {
		if sourceIDs[i], err = primitive.ObjectIDFromHex(hex); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid source workout ID format.")
			return
		}
	}

	copies, err := h.coachService.CopyRecurring(c.Request.Context(), coachID, service.RecurringCopyInput{
		SourceWorkoutIDs: sourceIDs,
		AthleteID:        athleteID,
		StartDate:        req.StartDate,
		Weekdays:         req.Weekdays,
		Weeks:            req.Weeks,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to create recurring copies.")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutsToResponse(copies))
}

// --- Completion ---

// GetAthleteCompletion godoc
// @Summary Completion status of a workout for one athlete
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param athleteId path string true "Athlete ID"
// @Success 200 {object} CompletionResponse
// @Router /coach/workouts/{workoutId}/completion/{athleteId} [get]
func (h *CoachHandler) GetAthleteCompletion(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	report, err := h.coachService.AthleteCompletion(c.Request.Context(), coachID, workoutID, athleteID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to evaluate completion.")
		return
	}
	c.JSON(http.StatusOK, MapCompletionToResponse(report))
}

// RecomputeCompletion godoc
// @Summary Rebuild completion markers of a workout from logged sets
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} gin.H "Number of athletes evaluated"
// @Router /coach/workouts/{workoutId}/completion/recompute [post]
func (h *CoachHandler) RecomputeCompletion(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	n, err := h.coachService.RecomputeCompletion(c.Request.Context(), coachID, workoutID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to recompute completion.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"athletesEvaluated": n})
}
