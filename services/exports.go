package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/log"
	"github.com/vnkhanh/survey-hub/metrics"
	"github.com/vnkhanh/survey-hub/models"
)

// CreateExport queues an export of the answers and renders it in the
// background. Poll GetExport for the outcome.
func (s *Service) CreateExport(ctx context.Context, sess *auth.Session, in forms.ExportInput) (*models.ExportJob, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	res := forms.Validate(in)
	in, ok := res.Valid()
	if !ok {
		return nil, res.Err()
	}
	if in.Format == "" {
		in.Format = exports.FormatCSV
	}

	job := models.ExportJob{
		Format:      in.Format,
		Status:      models.ExportQueued,
		RequestedBy: sess.UserID,
	}
	if in.AppID != "" {
		job.AppID = &in.AppID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AppID != "" {
			if err := exists(tx, &models.App{}, in.AppID); err != nil {
				return err
			}
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		return audit(tx, sess, "export.create", "export", job.ID, job.Format)
	})
	if err != nil {
		return nil, err
	}

	s.jobs.Add(1)
	go func(id string) {
		defer s.jobs.Done()
		if err := s.RunExport(context.Background(), id); err != nil {
			log.WithFields(log.Fields{"code": "export.run", "job": id}).WithError(err).Error("export failed")
		}
	}(job.ID)

	return &job, nil
}

// RunExport renders a queued job to the artifact store and records the result.
func (s *Service) RunExport(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)

	var job models.ExportJob
	if err := db.Where("id = ?", id).First(&job).Error; err != nil {
		return translate(err)
	}
	if job.Status != models.ExportQueued {
		return fmt.Errorf("job %s is %s", id, job.Status)
	}
	if err := db.Model(&job).Update("status", models.ExportProcessing).Error; err != nil {
		return err
	}

	location, err := s.render(ctx, job)
	if err != nil {
		metrics.RecordExport(models.ExportFailed)
		if uerr := db.Model(&job).Updates(map[string]interface{}{
			"status": models.ExportFailed,
			"error":  err.Error(),
		}).Error; uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}

	metrics.RecordExport(models.ExportDone)
	return db.Model(&job).Updates(map[string]interface{}{
		"status":   models.ExportDone,
		"storage":  s.store.Name(),
		"location": location,
	}).Error
}

func (s *Service) render(ctx context.Context, job models.ExportJob) (string, error) {
	appID := ""
	if job.AppID != nil {
		appID = *job.AppID
	}
	rows, err := answerRows(s.db.WithContext(ctx), appID)
	if err != nil {
		return "", fmt.Errorf("load answers: %w", err)
	}

	var buf bytes.Buffer
	if err := exports.Write(&buf, job.Format, rows); err != nil {
		return "", fmt.Errorf("render %s: %w", job.Format, err)
	}
	return s.store.Put(ctx, job.ID+"."+job.Format, exports.ContentType(job.Format), &buf)
}

func (s *Service) GetExport(ctx context.Context, sess *auth.Session, id string) (*models.ExportJob, error) {
	if err := auth.EnsureAuthenticated(sess); err != nil {
		return nil, err
	}
	var job models.ExportJob
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

// OpenExport returns the finished file of a job. The caller closes it.
func (s *Service) OpenExport(ctx context.Context, sess *auth.Session, id string) (*models.ExportJob, io.ReadCloser, error) {
	job, err := s.GetExport(ctx, sess, id)
	if err != nil {
		return nil, nil, err
	}
	if job.Status != models.ExportDone {
		return job, nil, ErrNotReady
	}
	rc, err := s.store.Open(ctx, job.Location)
	if err != nil {
		return job, nil, err
	}
	return job, rc, nil
}

// SweepExports deletes jobs older than retention together with their files.
func (s *Service) SweepExports(ctx context.Context, retention time.Duration) (int, error) {
	db := s.db.WithContext(ctx)
	cutoff := s.now().Add(-retention)

	var jobs []models.ExportJob
	if err := db.Where("created_at < ?", cutoff).Find(&jobs).Error; err != nil {
		return 0, err
	}

	removed := 0
	for _, job := range jobs {
		if job.Location != "" {
			if err := s.store.Remove(ctx, job.Location); err != nil {
				log.WithFields(log.Fields{"code": "export.sweep", "job": job.ID}).WithError(err).Warn("could not remove export file")
				continue
			}
		}
		if err := db.Delete(&job).Error; err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
