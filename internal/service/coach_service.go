package service

import (
	"alcyxob/coaching-app/internal/completion"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/instantiate"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/schedule"
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxWeeks        = 52
	defaultCopyConcurrency = 4
)

// WorkoutInput is the coach-editable content of a workout.
type WorkoutInput struct {
	Name   string
	Date   string // YYYY-MM-DD; optional for templates
	Notes  string
	Owner  domain.OwnerRef
	Blocks []domain.Block
}

// WorkoutQuery selects the coach's workouts. At most one of AthleteID,
// TeamID and Templates may be set.
type WorkoutQuery struct {
	AthleteID *primitive.ObjectID
	TeamID    *primitive.ObjectID
	Templates bool
	From, To  string
}

// CopyInput places a single copy of a workout.
type CopyInput struct {
	Owner domain.OwnerRef
	Date  string
	Name  string // empty keeps the source name
}

// RecurringCopyInput projects source workouts onto a weekly pattern.
type RecurringCopyInput struct {
	SourceWorkoutIDs []primitive.ObjectID
	AthleteID        primitive.ObjectID
	StartDate        string
	Weekdays         []int // 0 = Sunday .. 6 = Saturday
	Weeks            int
}

// ScheduleOptions tunes recurring copies.
type ScheduleOptions struct {
	MaxWeeks        int
	CopyConcurrency int
	NewID           instantiate.IDFunc // nil uses random UUIDs
}

type CoachService interface {
	// Roster
	AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error)
	ListAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)

	// Teams
	CreateTeam(ctx context.Context, coachID primitive.ObjectID, name string, memberIDs []primitive.ObjectID) (*domain.Team, error)
	ListTeams(ctx context.Context, coachID primitive.ObjectID) ([]domain.Team, error)
	AddTeamMember(ctx context.Context, coachID, teamID, athleteID primitive.ObjectID) (*domain.Team, error)
	RemoveTeamMember(ctx context.Context, coachID, teamID, athleteID primitive.ObjectID) (*domain.Team, error)

	// Workouts
	CreateWorkout(ctx context.Context, coachID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, coachID primitive.ObjectID, q WorkoutQuery) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID) error
	CopyWorkout(ctx context.Context, coachID, sourceID primitive.ObjectID, in CopyInput) (*domain.Workout, error)
	ApplyTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, owner domain.OwnerRef, date string) (*domain.Workout, error)
	CopyRecurring(ctx context.Context, coachID primitive.ObjectID, in RecurringCopyInput) ([]domain.Workout, error)

	// Completion
	AthleteCompletion(ctx context.Context, coachID, workoutID, athleteID primitive.ObjectID) (*CompletionReport, error)
	RecomputeCompletion(ctx context.Context, coachID, workoutID primitive.ObjectID) (int, error)
}

// coachService implements the CoachService interface.
type coachService struct {
	repos     Repositories
	evaluator *completion.Evaluator
	metrics   *metrics.Manager
	opts      ScheduleOptions
}

func NewCoachService(repos Repositories, metricsManager *metrics.Manager, opts ScheduleOptions) CoachService {
	if opts.MaxWeeks < 1 {
		opts.MaxWeeks = defaultMaxWeeks
	}
	if opts.CopyConcurrency < 1 {
		opts.CopyConcurrency = defaultCopyConcurrency
	}
	return &coachService{
		repos:     repos,
		evaluator: completion.NewEvaluator(repos.SetLogs, repos.Completions),
		metrics:   metricsManager,
		opts:      opts,
	}
}

// === Roster ===

// AddAthleteByEmail finds an athlete by email and puts them on the coach's roster.
func (s *coachService) AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error) {
	athleteEmail = normalizeEmail(athleteEmail)
	if athleteEmail == "" {
		return nil, invalidf("athlete email is required")
	}

	athlete, err := s.repos.Users.GetByEmail(ctx, athleteEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAthlete
	}
	if athlete.CoachID != nil && *athlete.CoachID != primitive.NilObjectID {
		if athlete.CoachedBy(coachID) {
			athlete.PasswordHash = ""
			return athlete, nil
		}
		return nil, ErrAthleteAlreadyCoached
	}

	if err = s.repos.Users.AddAthleteIDToCoach(ctx, coachID, athlete.ID); err != nil {
		return nil, err
	}
	// Not transactional: a failure here leaves the roster entry without the
	// back reference, and repeating the call repairs it.
	if err = s.repos.Users.SetCoachForAthlete(ctx, athlete.ID, coachID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"coach_id": coachID.Hex(), "athlete_id": athlete.ID.Hex()}).Info("athlete added to roster")
	athlete.CoachID = &coachID
	athlete.PasswordHash = ""
	return athlete, nil
}

func (s *coachService) ListAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	athletes, err := s.repos.Users.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}

// managedAthlete loads an athlete and checks that the coach manages them.
func (s *coachService) managedAthlete(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.User, error) {
	athlete, err := s.repos.Users.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrAthleteNotFound
	}
	if !athlete.CoachedBy(coachID) {
		return nil, ErrAthleteNotManaged
	}
	return athlete, nil
}

// === Teams ===

func (s *coachService) CreateTeam(ctx context.Context, coachID primitive.ObjectID, name string, memberIDs []primitive.ObjectID) (*domain.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidf("team name is required")
	}

	members := make([]primitive.ObjectID, 0, len(memberIDs))
	seen := make(map[primitive.ObjectID]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := s.managedAthlete(ctx, coachID, id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}

	team := &domain.Team{CoachID: coachID, Name: name, MemberIDs: members}
	teamID, err := s.repos.Teams.Create(ctx, team)
	if err != nil {
		return nil, err
	}
	return s.repos.Teams.GetByID(ctx, teamID)
}

func (s *coachService) ListTeams(ctx context.Context, coachID primitive.ObjectID) ([]domain.Team, error) {
	return s.repos.Teams.GetByCoachID(ctx, coachID)
}

func (s *coachService) ownedTeam(ctx context.Context, coachID, teamID primitive.ObjectID) (*domain.Team, error) {
	team, err := s.repos.Teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.CoachID != coachID {
		return nil, ErrTeamAccessDenied
	}
	return team, nil
}

func (s *coachService) AddTeamMember(ctx context.Context, coachID, teamID, athleteID primitive.ObjectID) (*domain.Team, error) {
	if _, err := s.ownedTeam(ctx, coachID, teamID); err != nil {
		return nil, err
	}
	if _, err := s.managedAthlete(ctx, coachID, athleteID); err != nil {
		return nil, err
	}
	if err := s.repos.Teams.AddMember(ctx, teamID, athleteID); err != nil {
		return nil, err
	}
	return s.repos.Teams.GetByID(ctx, teamID)
}

// RemoveTeamMember drops an athlete from a team. Sets they logged on team
// workouts stay in place.
func (s *coachService) RemoveTeamMember(ctx context.Context, coachID, teamID, athleteID primitive.ObjectID) (*domain.Team, error) {
	if _, err := s.ownedTeam(ctx, coachID, teamID); err != nil {
		return nil, err
	}
	if err := s.repos.Teams.RemoveMember(ctx, teamID, athleteID); err != nil {
		return nil, err
	}
	return s.repos.Teams.GetByID(ctx, teamID)
}

// === Workouts ===

func validateWorkoutInput(in WorkoutInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidf("workout name is required")
	}
	if err := in.Owner.Validate(); err != nil {
		return err
	}
	if err := validateDate(in.Date, in.Owner); err != nil {
		return err
	}
	for bi, b := range in.Blocks {
		for ei, ex := range b.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return invalidf("block %d exercise %d: name is required", bi+1, ei+1)
			}
			if ex.TargetSets < 0 {
				return invalidf("block %d exercise %d: target sets cannot be negative", bi+1, ei+1)
			}
		}
	}
	return nil
}

// validateDate requires a date on assigned workouts and a well formed one
// whenever it is present.
func validateDate(date string, owner domain.OwnerRef) error {
	if date == "" {
		if owner.IsTemplate() {
			return nil
		}
		return invalidf("date is required for assigned workouts")
	}
	_, err := domain.ParseDate(date)
	return err
}

// checkOwner verifies the coach may assign workouts to the owner.
func (s *coachService) checkOwner(ctx context.Context, coachID primitive.ObjectID, owner domain.OwnerRef) error {
	if owner.AthleteID != nil {
		_, err := s.managedAthlete(ctx, coachID, *owner.AthleteID)
		return err
	}
	if owner.TeamID != nil {
		_, err := s.ownedTeam(ctx, coachID, *owner.TeamID)
		return err
	}
	return nil
}

func (s *coachService) ownedWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := loadWorkout(ctx, s.repos.Workouts, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.CoachID != coachID {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func copyBlocks(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
		out[i].Exercises = append([]domain.WorkoutExercise{}, b.Exercises...)
	}
	return out
}

// inheritLibraryVideos gives exercises without a video the video of the
// coach's library entry with exactly the same name.
func (s *coachService) inheritLibraryVideos(ctx context.Context, coachID primitive.ObjectID, blocks []domain.Block) error {
	cache := make(map[string]string)
	for bi := range blocks {
		for ei := range blocks[bi].Exercises {
			ex := &blocks[bi].Exercises[ei]
			if ex.VideoRef != "" {
				continue
			}
			ref, cached := cache[ex.Name]
			if !cached {
				entry, err := s.repos.Exercises.GetByName(ctx, coachID, ex.Name)
				switch {
				case err == nil:
					ref = entry.VideoRef
				case errors.Is(err, repository.ErrNotFound):
				default:
					return err
				}
				cache[ex.Name] = ref
			}
			ex.VideoRef = ref
		}
	}
	return nil
}

// CreateWorkout validates and stores a workout. Blocks and exercises without
// an identifier get a fresh one.
func (s *coachService) CreateWorkout(ctx context.Context, coachID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	if err := validateWorkoutInput(in); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, coachID, in.Owner); err != nil {
		return nil, err
	}

	blocks := instantiate.NewBuilder(s.opts.NewID).FillIDs(copyBlocks(in.Blocks))
	if err := s.inheritLibraryVideos(ctx, coachID, blocks); err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		CoachID: coachID,
		Name:    in.Name,
		Date:    in.Date,
		Notes:   in.Notes,
		Blocks:  blocks,
	}
	workout.SetOwner(in.Owner)
	if err := s.insertWorkout(ctx, workout); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsCreated.Inc()
	}
	return workout, nil
}

// insertWorkout is where every new workout lands, direct or instantiated.
func (s *coachService) insertWorkout(ctx context.Context, workout *domain.Workout) error {
	if _, err := s.repos.Workouts.Create(ctx, workout); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"workout_id": workout.ID.Hex(),
		"coach_id":   workout.CoachID.Hex(),
		"date":       workout.Date,
		"template":   workout.IsTemplate(),
	}).Debug("workout created")
	return nil
}

func (s *coachService) GetWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.ownedWorkout(ctx, coachID, workoutID)
}

func (s *coachService) ListWorkouts(ctx context.Context, coachID primitive.ObjectID, q WorkoutQuery) ([]domain.Workout, error) {
	selectors := 0
	for _, set := range []bool{q.AthleteID != nil, q.TeamID != nil, q.Templates} {
		if set {
			selectors++
		}
	}
	if selectors > 1 {
		return nil, invalidf("filter by athlete, team or templates, not several")
	}
	if err := validateRange(q.From, q.To); err != nil {
		return nil, err
	}

	filter := repository.WorkoutFilter{CoachID: &coachID, TemplateOnly: q.Templates, From: q.From, To: q.To}
	switch {
	case q.AthleteID != nil:
		teams, err := s.repos.Teams.GetByMemberID(ctx, *q.AthleteID)
		if err != nil {
			return nil, err
		}
		filter.AthleteID = q.AthleteID
		for _, t := range teams {
			if t.CoachID == coachID {
				filter.TeamIDs = append(filter.TeamIDs, t.ID)
			}
		}
	case q.TeamID != nil:
		filter.TeamIDs = []primitive.ObjectID{*q.TeamID}
	}

	workouts, err := s.repos.Workouts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

func validateRange(from, to string) error {
	if from != "" {
		if _, err := domain.ParseDate(from); err != nil {
			return err
		}
	}
	if to != "" {
		if _, err := domain.ParseDate(to); err != nil {
			return err
		}
	}
	if from != "" && to != "" && from > to {
		return invalidf("from %s is after to %s", from, to)
	}
	return nil
}

// UpdateWorkout replaces a workout's content. Existing block and exercise
// identifiers are kept so logged sets stay attached; markers are re-derived
// because the exercise list may have changed.
func (s *coachService) UpdateWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	if err := validateWorkoutInput(in); err != nil {
		return nil, err
	}
	existing, err := s.ownedWorkout(ctx, coachID, workoutID)
	if err != nil {
		return nil, err
	}
	if err = s.checkOwner(ctx, coachID, in.Owner); err != nil {
		return nil, err
	}

	blocks := instantiate.NewBuilder(s.opts.NewID).FillIDs(copyBlocks(in.Blocks))
	if err = s.inheritLibraryVideos(ctx, coachID, blocks); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Date = in.Date
	existing.Notes = in.Notes
	existing.Blocks = blocks
	existing.SetOwner(in.Owner)
	if err = s.repos.Workouts.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	updated, err := loadWorkout(ctx, s.repos.Workouts, workoutID)
	if err != nil {
		return nil, err
	}
	if _, err = s.recomputeMarkers(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteWorkout removes a workout together with its set logs and markers.
func (s *coachService) DeleteWorkout(ctx context.Context, coachID, workoutID primitive.ObjectID) error {
	if _, err := s.ownedWorkout(ctx, coachID, workoutID); err != nil {
		return err
	}
	if err := s.repos.Workouts.Delete(ctx, workoutID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	if err := s.repos.SetLogs.DeleteByWorkout(ctx, workoutID); err != nil {
		return fmt.Errorf("delete set logs: %w", err)
	}
	if err := s.repos.Completions.DeleteByWorkout(ctx, workoutID); err != nil {
		return fmt.Errorf("delete completion markers: %w", err)
	}
	return nil
}

// CopyWorkout instantiates any of the coach's workouts onto a new owner and date.
func (s *coachService) CopyWorkout(ctx context.Context, coachID, sourceID primitive.ObjectID, in CopyInput) (*domain.Workout, error) {
	if err := in.Owner.Validate(); err != nil {
		return nil, err
	}
	if err := validateDate(in.Date, in.Owner); err != nil {
		return nil, err
	}
	source, err := s.ownedWorkout(ctx, coachID, sourceID)
	if err != nil {
		return nil, err
	}
	if err = s.checkOwner(ctx, coachID, in.Owner); err != nil {
		return nil, err
	}

	copied := instantiate.NewBuilder(s.opts.NewID).Workout(source, instantiate.Destination{
		CoachID: coachID,
		Owner:   in.Owner,
		Date:    in.Date,
		Name:    in.Name,
	})
	if err = s.insertWorkout(ctx, &copied); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterWorkoutsCreated.Inc()
	}
	return &copied, nil
}

// ApplyTemplate rolls a template out to an athlete or a team.
func (s *coachService) ApplyTemplate(ctx context.Context, coachID, templateID primitive.ObjectID, owner domain.OwnerRef, date string) (*domain.Workout, error) {
	if owner.IsTemplate() {
		return nil, invalidf("an athlete or a team is required")
	}
	template, err := s.ownedWorkout(ctx, coachID, templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate() {
		return nil, ErrNotATemplate
	}
	return s.CopyWorkout(ctx, coachID, templateID, CopyInput{Owner: owner, Date: date})
}

// CopyRecurring copies every source workout onto each date of a weekly
// pattern for one athlete. All input is checked and every referenced entity
// loaded before anything is written. The copies are created concurrently;
// if one fails, the ones already created are removed again. The result is
// ordered by date, then by the order of SourceWorkoutIDs.
func (s *coachService) CopyRecurring(ctx context.Context, coachID primitive.ObjectID, in RecurringCopyInput) ([]domain.Workout, error) {
	if len(in.SourceWorkoutIDs) == 0 {
		return nil, invalidf("at least one source workout is required")
	}
	if in.AthleteID == primitive.NilObjectID {
		return nil, invalidf("target athlete is required")
	}
	if in.Weeks > s.opts.MaxWeeks {
		return nil, invalidf("week count %d exceeds the maximum of %d", in.Weeks, s.opts.MaxWeeks)
	}
	start, err := domain.ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	weekdays, err := schedule.ParseWeekdays(in.Weekdays)
	if err != nil {
		return nil, err
	}
	dates, err := schedule.RecurringDates(start, weekdays, in.Weeks)
	if err != nil {
		return nil, err
	}

	sources := make([]*domain.Workout, len(in.SourceWorkoutIDs))
	for i, id := range in.SourceWorkoutIDs {
		if sources[i], err = s.ownedWorkout(ctx, coachID, id); err != nil {
			return nil, err
		}
	}
	if _, err = s.managedAthlete(ctx, coachID, in.AthleteID); err != nil {
		return nil, err
	}

	// The builder is not safe for concurrent use, so every copy is built
	// up front and only the inserts run in parallel.
	builder := instantiate.NewBuilder(s.opts.NewID)
	planned := make([]domain.Workout, 0, len(dates)*len(sources))
	for _, date := range dates {
		for _, src := range sources {
			athleteID := in.AthleteID
			planned = append(planned, builder.Workout(src, instantiate.Destination{
				CoachID: coachID,
				Owner:   domain.OwnerRef{AthleteID: &athleteID},
				Date:    domain.FormatDate(date),
			}))
		}
	}

	created := make([]bool, len(planned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CopyConcurrency)
	for i := range planned {
		g.Go(func() error {
			if err := s.insertWorkout(gctx, &planned[i]); err != nil {
				return fmt.Errorf("create copy of %q on %s: %w", planned[i].Name, planned[i].Date, err)
			}
			created[i] = true
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		s.rollbackCopies(context.WithoutCancel(ctx), coachID, planned, created)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterRecurringCopies.Add(float64(len(planned)))
	}
	log.WithFields(log.Fields{
		"coach_id":   coachID.Hex(),
		"athlete_id": in.AthleteID.Hex(),
		"sources":    len(sources),
		"dates":      len(dates),
	}).Info("recurring copy created")
	return planned, nil
}

func (s *coachService) rollbackCopies(ctx context.Context, coachID primitive.ObjectID, planned []domain.Workout, created []bool) {
	for i, ok := range created {
		if !ok {
			continue
		}
		if err := s.repos.Workouts.Delete(ctx, planned[i].ID, coachID); err != nil {
			log.WithError(err).WithField("workout_id", planned[i].ID.Hex()).Warn("failed to roll back recurring copy")
		}
	}
}

// === Completion ===

// AthleteCompletion is the coach's view of an athlete's progress on a workout.
func (s *coachService) AthleteCompletion(ctx context.Context, coachID, workoutID, athleteID primitive.ObjectID) (*CompletionReport, error) {
	workout, err := s.ownedWorkout(ctx, coachID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsTemplate() {
		return nil, ErrTemplateHasNoSets
	}
	if err = checkParticipant(ctx, s.repos.Teams, workout, athleteID); err != nil {
		return nil, err
	}
	ws, err := s.evaluator.WorkoutStatus(ctx, workout, athleteID)
	if err != nil {
		return nil, err
	}
	return newCompletionReport(ws), nil
}

// RecomputeCompletion rebuilds the completion markers of a workout from the
// logged sets and returns how many participating athletes were evaluated.
func (s *coachService) RecomputeCompletion(ctx context.Context, coachID, workoutID primitive.ObjectID) (int, error) {
	workout, err := s.ownedWorkout(ctx, coachID, workoutID)
	if err != nil {
		return 0, err
	}
	return s.recomputeMarkers(ctx, workout)
}

func (s *coachService) recomputeMarkers(ctx context.Context, workout *domain.Workout) (int, error) {
	athletes, err := s.repos.SetLogs.ListAthletesForWorkout(ctx, workout.ID)
	if err != nil {
		return 0, err
	}
	evaluated := 0
	for _, athleteID := range athletes {
		// Logs of a former owner or team member stay stored but no longer
		// count towards completion.
		err = checkParticipant(ctx, s.repos.Teams, workout, athleteID)
		if errors.Is(err, ErrWorkoutAccessDenied) {
			if err = s.repos.Completions.Delete(ctx, workout.ID, athleteID); err != nil {
				return 0, fmt.Errorf("delete completion marker: %w", err)
			}
			continue
		}
		if err != nil {
			return 0, err
		}

		ws, err := s.evaluator.Evaluate(ctx, workout, athleteID)
		if err != nil {
			return 0, err
		}
		recordMarkerSync(s.metrics, ws)
		evaluated++
	}
	return evaluated, nil
}
