// internal/services/sync_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/models"
)

// MetafieldAPI is the slice of the Admin API the synchronizer writes
// through.
type MetafieldAPI interface {
	GetCartTransformID(ctx context.Context) (string, error)
	SetMetafield(ctx context.Context, ownerID, namespace, key, valueType, value string) error
}

// BundleLister supplies the source-of-truth bundle list the snapshot is
// rebuilt from.
type BundleLister interface {
	ListAll(ctx context.Context, status models.BundleStatus) ([]models.Bundle, error)
}

// SyncService re-materializes the checkout snapshot after every bundle
// mutation. The snapshot is always rebuilt wholesale from the bundle
// store and written as a single replace, so overlapping sync passes
// converge on the same document and no lock is needed. Incremental
// patching would break that last-write-wins safety.
type SyncService struct {
	lister    BundleLister
	api       MetafieldAPI
	db        *gorm.DB
	shop      string
	namespace string
	key       string
	log       *logrus.Entry
}

func NewSyncService(lister BundleLister, api MetafieldAPI, db *gorm.DB, shop string, cfg config.SyncConfig) *SyncService {
	return &SyncService{
		lister:    lister,
		api:       api,
		db:        db,
		shop:      shop,
		namespace: cfg.MetafieldNamespace,
		key:       cfg.MetafieldKey,
		log:       logrus.WithField("component", "sync"),
	}
}

// BuildCartTransformSnapshot projects active bundles into the shape the
// checkout-time function reads. Pure: given the same bundle list it
// yields the same snapshot, with bundles, steps and products in a
// deterministic order so repeated syncs write byte-identical documents.
func BuildCartTransformSnapshot(bundles []models.Bundle) models.CartTransformSnapshot {
	snapshot := models.CartTransformSnapshot{Bundles: make([]models.SnapshotBundle, 0, len(bundles))}

	for _, b := range bundles {
		sb := models.SnapshotBundle{
			ID:            b.ID,
			Title:         b.Title,
			DiscountType:  b.DiscountType,
			DiscountValue: b.DiscountValue,
			Steps:         make([]models.SnapshotStep, 0, len(b.Steps)),
		}

		steps := make([]models.BundleStep, len(b.Steps))
		copy(steps, b.Steps)
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].Position < steps[j].Position })

		for _, step := range steps {
			ss := models.SnapshotStep{
				ID:       step.ID,
				Products: make([]models.SnapshotProduct, 0, len(step.Products)),
			}

			products := make([]models.BundleProduct, len(step.Products))
			copy(products, step.Products)
			sort.SliceStable(products, func(i, j int) bool { return products[i].Position < products[j].Position })

			for _, p := range products {
				ss.Products = append(ss.Products, models.SnapshotProduct{ID: p.ID})
			}
			sb.Steps = append(sb.Steps, ss)
		}

		snapshot.Bundles = append(snapshot.Bundles, sb)
	}

	sort.SliceStable(snapshot.Bundles, func(i, j int) bool {
		return snapshot.Bundles[i].ID < snapshot.Bundles[j].ID
	})

	return snapshot
}

// OnBundleChanged rebuilds the active-bundle snapshot and overwrites
// the metafield the cart transform reads. A failure here is reported to
// the caller but the triggering mutation stays committed: the stores
// may transiently diverge and the next successful pass self-heals.
func (s *SyncService) OnBundleChanged(ctx context.Context, trigger models.SyncTrigger) error {
	start := time.Now()

	bundles, err := s.lister.ListAll(ctx, models.BundleStatusActive)
	if err != nil {
		err = fmt.Errorf("failed to load active bundles: %w", err)
		s.recordRun(trigger, 0, err, start)
		return err
	}

	snapshot := BuildCartTransformSnapshot(bundles)
	payload, err := json.Marshal(snapshot)
	if err != nil {
		err = fmt.Errorf("failed to encode snapshot: %w", err)
		s.recordRun(trigger, len(bundles), err, start)
		return err
	}

	ownerID, err := s.api.GetCartTransformID(ctx)
	if err != nil {
		s.recordRun(trigger, len(bundles), err, start)
		return err
	}

	if err := s.api.SetMetafield(ctx, ownerID, s.namespace, s.key, "json", string(payload)); err != nil {
		s.recordRun(trigger, len(bundles), err, start)
		return err
	}

	s.recordRun(trigger, len(bundles), nil, start)
	s.log.WithFields(logrus.Fields{
		"trigger": trigger,
		"bundles": len(bundles),
	}).Info("Cart transform snapshot synchronized")
	return nil
}

func (s *SyncService) recordRun(trigger models.SyncTrigger, count int, runErr error, start time.Time) {
	if s.db == nil {
		return
	}

	run := &models.SyncRun{
		Shop:        s.shop,
		Trigger:     trigger,
		Status:      models.SyncStatusSucceeded,
		BundleCount: count,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		run.Status = models.SyncStatusFailed
		run.Error = runErr.Error()
	}

	if err := s.db.Create(run).Error; err != nil {
		s.log.WithError(err).Warn("Failed to record sync run")
	}
}

// RecentRuns returns the latest sync outcomes for diagnostics.
func (s *SyncService) RecentRuns(limit int) ([]models.SyncRun, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var runs []models.SyncRun
	if err := s.db.Where("shop = ?", s.shop).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sync runs: %w", err)
	}
	return runs, nil
}
