// internal/services/combination_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/codec"
	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
	"github.com/dario9661s/bundles-sub000/internal/stores"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

type CombinationService struct {
	store         *stores.CombinationStore
	pipeline      *UploadPipeline
	files         FilesAPI
	storage       *StorageService
	maxImageBytes int64
	log           *logrus.Entry
}

type CreateCombinationRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=2,max=4,dive,required"`
	Title      string   `json:"title,omitempty" validate:"omitempty,max=255"`
	Filename   string   `json:"-"`
	MimeType   string   `json:"-"`
	ImageBytes []byte   `json:"-"`
}

type UpdateCombinationRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Filename   string  `json:"-"`
	MimeType   string  `json:"-"`
	ImageBytes []byte  `json:"-"`
}

func NewCombinationService(store *stores.CombinationStore, pipeline *UploadPipeline, files FilesAPI, storage *StorageService, maxImageBytes int64) *CombinationService {
	return &CombinationService{
		store:         store,
		pipeline:      pipeline,
		files:         files,
		storage:       storage,
		maxImageBytes: maxImageBytes,
		log:           logrus.WithField("component", "combination_service"),
	}
}

// Create runs the upload pipeline and only then writes the combination
// record, so a pipeline failure can never leave a record referencing an
// unresolved image.
func (s *CombinationService) Create(ctx context.Context, req *CreateCombinationRequest) (*models.Combination, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationErrorf(fmt.Sprintf("invalid combination: %v", err))
	}
	if len(req.ImageBytes) == 0 {
		return nil, validationErrorf("an image is required")
	}
	if s.maxImageBytes > 0 && int64(len(req.ImageBytes)) > s.maxImageBytes {
		return nil, validationErrorf(fmt.Sprintf("image exceeds the %d byte limit", s.maxImageBytes))
	}

	existing, err := s.store.FindByProductSet(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCombination
	}

	mediaID, imageURL, err := s.uploadImage(ctx, req.Filename, req.MimeType, req.ImageBytes)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, &models.Combination{
		ProductIDs: req.ProductIDs,
		MediaID:    mediaID,
		ImageURL:   imageURL,
		Title:      req.Title,
	})
}

// Update re-runs the upload pipeline only when new image bytes arrive;
// a title-only update patches the title field alone.
func (s *CombinationService) Update(ctx context.Context, id string, req *UpdateCombinationRequest) (*models.Combination, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationErrorf(fmt.Sprintf("invalid combination update: %v", err))
	}

	var fields []shopify.MetaobjectField

	if len(req.ImageBytes) > 0 {
		if s.maxImageBytes > 0 && int64(len(req.ImageBytes)) > s.maxImageBytes {
			return nil, validationErrorf(fmt.Sprintf("image exceeds the %d byte limit", s.maxImageBytes))
		}
		mediaID, imageURL, err := s.uploadImage(ctx, req.Filename, req.MimeType, req.ImageBytes)
		if err != nil {
			return nil, err
		}
		fields = append(fields,
			shopify.MetaobjectField{Key: codec.CombinationFieldMediaID, Value: mediaID},
			shopify.MetaobjectField{Key: codec.CombinationFieldImageURL, Value: imageURL},
		)
	}

	if req.Title != nil {
		fields = append(fields, shopify.MetaobjectField{Key: codec.CombinationFieldTitle, Value: *req.Title})
	}

	if len(fields) == 0 {
		combination, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if combination == nil {
			return nil, stores.ErrNotFound
		}
		return combination, nil
	}

	return s.store.Update(ctx, id, fields)
}

func (s *CombinationService) Delete(ctx context.Context, id string) error {
	deleted, userErrors, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		if len(userErrors) > 0 {
			return &stores.RemoteValidationError{Errors: userErrors}
		}
		return stores.ErrNotFound
	}
	return nil
}

func (s *CombinationService) FindByProductSet(ctx context.Context, productIDs []string) (*models.Combination, error) {
	if len(productIDs) < models.MinCombinationProducts || len(productIDs) > models.MaxCombinationProducts {
		return nil, validationErrorf(fmt.Sprintf("a combination holds %d to %d products",
			models.MinCombinationProducts, models.MaxCombinationProducts))
	}
	return s.store.FindByProductSet(ctx, productIDs)
}

func (s *CombinationService) List(ctx context.Context) ([]models.Combination, error) {
	return s.store.List(ctx)
}

// ListByIDs resolves each combination and re-fetches its image URL from
// the media service so callers always see the asset's current location.
// Resolution failures fall back to the stored URL.
func (s *CombinationService) ListByIDs(ctx context.Context, ids []string) ([]models.Combination, error) {
	combinations, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range combinations {
		if combinations[i].MediaID == "" {
			continue
		}
		status, url, err := s.files.GetFileStatus(ctx, combinations[i].MediaID)
		if err != nil {
			s.log.WithError(err).WithField("media_id", combinations[i].MediaID).
				Warn("Failed to resolve image URL, using stored value")
			continue
		}
		if status == shopify.FileStatusReady && url != "" {
			combinations[i].ImageURL = url
		}
	}

	return combinations, nil
}

// uploadImage prefers the staged-upload pipeline. When staging itself
// is unavailable (typically a dev token without Files scope) and S3
// fallback hosting is configured, the image is hosted there instead; a
// poll timeout is always terminal because the asset exists but never
// became resolvable.
func (s *CombinationService) uploadImage(ctx context.Context, filename, mimeType string, data []byte) (mediaID, url string, err error) {
	mediaID, url, err = s.pipeline.Run(ctx, filename, mimeType, data)
	if err == nil {
		return mediaID, url, nil
	}
	if errors.Is(err, ErrUploadTimeout) || !s.storage.Enabled() {
		return "", "", err
	}

	s.log.WithError(err).Warn("Staged upload unavailable, falling back to S3 hosting")
	result, uploadErr := s.storage.UploadImage(data, filename, mimeType)
	if uploadErr != nil {
		return "", "", fmt.Errorf("fallback upload failed: %w", uploadErr)
	}
	return result.Key, result.URL, nil
}
