package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/storage"
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxVideoBytes caps the size of a confirmed exercise video. Larger objects
// are removed from storage on confirm.
const MaxVideoBytes int64 = 500 << 20

// ExerciseInput carries the editable fields of a library exercise.
type ExerciseInput struct {
	Name             string
	Description      string
	MuscleGroup      string
	ExecutionTechnic string
	Difficulty       string
	VideoRef         string
}

// VideoUploadTicket is handed to the client to upload straight to storage.
type VideoUploadTicket struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"` // reported back on confirm
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConfirmUploadInput describes a finished upload.
type ConfirmUploadInput struct {
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64 // used only when storage reports no size
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error

	RequestVideoUploadURL(ctx context.Context, coachID, exerciseID primitive.ObjectID, fileName, contentType string) (*VideoUploadTicket, error)
	ConfirmVideoUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, in ConfirmUploadInput) (*domain.Upload, error)
	ListVideoUploads(ctx context.Context, coachID, exerciseID primitive.ObjectID) ([]domain.Upload, error)
	VideoURL(ctx context.Context, ref string) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo  repository.ExerciseRepository
	uploadRepo    repository.UploadRepository
	fileStorage   storage.FileStorage // nil when storage is not configured
	presignExpiry time.Duration
}

func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
	presignExpiry time.Duration,
) ExerciseService {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exerciseService{
		exerciseRepo:  exerciseRepo,
		uploadRepo:    uploadRepo,
		fileStorage:   fileStorage,
		presignExpiry: presignExpiry,
	}
}

// CreateExercise adds an entry to the coach's library.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("exercise name is required")
	}

	exercise := &domain.Exercise{
		CoachID:          coachID,
		Name:             in.Name,
		Description:      in.Description,
		MuscleGroup:      in.MuscleGroup,
		ExecutionTechnic: in.ExecutionTechnic,
		Difficulty:       in.Difficulty,
		VideoRef:         in.VideoRef,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// owned loads an exercise and checks that the coach owns it.
func (s *exerciseService) owned(ctx context.Context, coachID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	return s.owned(ctx, coachID, exerciseID)
}

func (s *exerciseService) ListExercises(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// UpdateExercise replaces the editable fields, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("exercise name is required")
	}
	existing, err := s.owned(ctx, coachID, exerciseID)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Description = in.Description
	existing.MuscleGroup = in.MuscleGroup
	existing.ExecutionTechnic = in.ExecutionTechnic
	existing.Difficulty = in.Difficulty
	existing.VideoRef = in.VideoRef

	if err = s.exerciseRepo.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrExerciseNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// DeleteExercise removes a library entry. Workouts keep their copy of the
// name and video reference, so the stored video object is left in place.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	// The repository filters on the coach too; "not found" covers both cases.
	err := s.exerciseRepo.Delete(ctx, exerciseID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// RequestVideoUploadURL issues a presigned PUT URL for a new video of a
// library exercise.
func (s *exerciseService) RequestVideoUploadURL(ctx context.Context, coachID, exerciseID primitive.ObjectID, fileName, contentType string) (*VideoUploadTicket, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, invalidf("invalid or missing video content type")
	}
	if _, err := s.owned(ctx, coachID, exerciseID); err != nil {
		return nil, err
	}

	objectKey := storage.ExerciseVideoKey(exerciseID.Hex(), fileName, contentType)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.presignExpiry)
	if err != nil {
		log.WithError(err).WithField("exercise_id", exerciseID.Hex()).Error("presign upload failed")
		return nil, ErrUploadURLError
	}
	return &VideoUploadTicket{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().UTC().Add(s.presignExpiry),
	}, nil
}

// ConfirmVideoUpload records an upload that reached storage and makes it the
// exercise's video.
func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, in ConfirmUploadInput) (*domain.Upload, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if in.ObjectKey == "" || in.FileName == "" || in.ContentType == "" {
		return nil, invalidf("objectKey, fileName and contentType are required")
	}
	if !storage.BelongsToExercise(in.ObjectKey, exerciseID.Hex()) {
		return nil, ErrUploadKeyMismatch
	}
	exercise, err := s.owned(ctx, coachID, exerciseID)
	if err != nil {
		return nil, err
	}

	size, err := s.fileStorage.ObjectSize(ctx, in.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	if size > MaxVideoBytes {
		if derr := s.fileStorage.DeleteObject(ctx, in.ObjectKey); derr != nil {
			log.WithError(derr).WithField("key", in.ObjectKey).Warn("failed to remove oversized upload")
		}
		return nil, ErrUploadTooLarge
	}
	if size == 0 {
		size = in.Size
	}

	upload := &domain.Upload{
		ExerciseID:  exerciseID,
		CoachID:     coachID,
		S3ObjectKey: in.ObjectKey,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        size,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidf("upload %s was already confirmed", in.ObjectKey)
		}
		return nil, err
	}

	exercise.VideoRef = in.ObjectKey
	if err = s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"exercise_id": exerciseID.Hex(),
		"upload_id":   uploadID.Hex(),
		"size":        size,
	}).Info("exercise video confirmed")
	return s.uploadRepo.GetByID(ctx, uploadID)
}

func (s *exerciseService) ListVideoUploads(ctx context.Context, coachID, exerciseID primitive.ObjectID) ([]domain.Upload, error) {
	if _, err := s.owned(ctx, coachID, exerciseID); err != nil {
		return nil, err
	}
	return s.uploadRepo.GetByExerciseID(ctx, exerciseID)
}

// VideoURL resolves a video reference to something a player can open:
// absolute URLs are returned as is, storage keys get a presigned GET URL.
func (s *exerciseService) VideoURL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrNoVideo
	}
	if domain.IsExternalVideo(ref) {
		return ref, nil
	}
	if s.fileStorage == nil {
		return "", ErrStorageUnavailable
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, ref, s.presignExpiry)
	if err != nil {
		log.WithError(err).WithField("key", ref).Error("presign download failed")
		return "", ErrDownloadURLError
	}
	return url, nil
}
