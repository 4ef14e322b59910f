package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// groupable lists the columns CountBy may aggregate on.
var groupable = map[string]bool{
	"field_of_study": true,
	"level_of_study": true,
}

type scholarshipRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScholarshipRepository(db *gorm.DB, log *logger.Logger) ports.ScholarshipRepository {
	return &scholarshipRepository{db: db, log: log}
}

func (r *scholarshipRepository) Create(ctx context.Context, scholarship *domain.Scholarship) error {
	if err := r.db.WithContext(ctx).Create(scholarship).Error; err != nil {
		r.log.Errorw("scholarship_repo_create_failed", "task_id", scholarship.TaskID, "title", scholarship.Title, "error", err)
		return storageError(err)
	}
	r.log.Infow("scholarship_repo_create_ok", "id", scholarship.ID, "task_id", scholarship.TaskID)
	return nil
}

func (r *scholarshipRepository) GetByID(ctx context.Context, id uint) (*domain.Scholarship, error) {
	var scholarship domain.Scholarship
	if err := r.db.WithContext(ctx).First(&scholarship, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Errorw("scholarship_repo_get_failed", "id", id, "error", err)
		}
		return nil, storageError(err)
	}
	return &scholarship, nil
}

func (r *scholarshipRepository) List(ctx context.Context, filter ports.ScholarshipFilter) ([]domain.Scholarship, error) {
	query := r.db.WithContext(ctx).Model(&domain.Scholarship{})

	if filter.FieldOfStudy != "" {
		query = query.Where("LOWER(field_of_study) LIKE ? ESCAPE '\\'", containsPattern(filter.FieldOfStudy))
	}
	if filter.LevelOfStudy != "" {
		query = query.Where("level_of_study = ?", filter.LevelOfStudy)
	}
	if filter.MinConfidence > 0 {
		query = query.Where("confidence_score >= ?", filter.MinConfidence)
	}
	if filter.DeadlineAfter != nil {
		query = query.Where("deadline >= ?", *filter.DeadlineAfter)
	}
	// Amount bounds select overlapping ranges; rows without a numeric amount
	// never match once a bound is given.
	if filter.MinAmount != nil {
		query = query.Where("amount_max IS NOT NULL AND amount_max >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount_min IS NOT NULL AND amount_min <= ?", *filter.MaxAmount)
	}
	if filter.SourceURL != "" {
		query = query.Where("LOWER(source_url) LIKE ? ESCAPE '\\'", containsPattern(filter.SourceURL))
	}
	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}

	var scholarships []domain.Scholarship
	err := query.
		Order("last_updated desc").
		Order("id desc").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&scholarships).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_list_failed", "error", err)
		return nil, storageError(err)
	}
	r.log.Debugw("scholarship_repo_list_ok", "count", len(scholarships))
	return scholarships, nil
}

func (r *scholarshipRepository) CountAndAverage(ctx context.Context) (int64, float64, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&domain.Scholarship{}).
		Select("COUNT(*) AS count, AVG(confidence_score) AS average").
		Scan(&row).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_count_failed", "error", err)
		return 0, 0, storageError(err)
	}
	if row.Average == nil {
		return row.Count, 0, nil
	}
	return row.Count, *row.Average, nil
}

func (r *scholarshipRepository) CountBy(ctx context.Context, column string) ([]ports.GroupCount, error) {
	if !groupable[column] {
		return nil, fmt.Errorf("%w: cannot group scholarships by %q", domain.ErrValidation, column)
	}

	var rows []ports.GroupCount
	err := r.db.WithContext(ctx).Model(&domain.Scholarship{}).
		Select(column + " AS bucket, COUNT(*) AS count").
		Where(column + " <> ''").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_count_by_failed", "column", column, "error", err)
		return nil, storageError(err)
	}
	return rows, nil
}

func (r *scholarshipRepository) Recent(ctx context.Context, limit int) ([]domain.Scholarship, error) {
	var scholarships []domain.Scholarship
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&scholarships).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_recent_failed", "error", err)
		return nil, storageError(err)
	}
	return scholarships, nil
}

func (r *scholarshipRepository) UpdatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).Model(&domain.Scholarship{}).
		Where("last_updated >= ?", since).
		Pluck("last_updated", &stamps).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_updated_since_failed", "error", err)
		return nil, storageError(err)
	}
	return stamps, nil
}

func (r *scholarshipRepository) AmountRanges(ctx context.Context) ([]ports.GroupCount, error) {
	bucket := fmt.Sprintf(`CASE
		WHEN amount_max IS NULL THEN '%s'
		WHEN amount_max < 1000 THEN '%s'
		WHEN amount_max < 5000 THEN '%s'
		WHEN amount_max < 10000 THEN '%s'
		WHEN amount_max < 25000 THEN '%s'
		ELSE '%s' END`,
		domain.AmountRangeUnknown,
		domain.AmountRangeUnder1K,
		domain.AmountRange1KTo5K,
		domain.AmountRange5KTo10K,
		domain.AmountRange10KTo25K,
		domain.AmountRangeOver25K,
	)

	var rows []ports.GroupCount
	err := r.db.WithContext(ctx).Model(&domain.Scholarship{}).
		Select(bucket + " AS bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_amount_ranges_failed", "error", err)
		return nil, storageError(err)
	}
	return rows, nil
}

func (r *scholarshipRepository) DeadlineDistribution(ctx context.Context, now, monthEnd, quarterEnd time.Time) ([]ports.GroupCount, error) {
	bucket := fmt.Sprintf(`CASE
		WHEN deadline IS NULL THEN '%s'
		WHEN deadline < ? THEN '%s'
		WHEN deadline < ? THEN '%s'
		WHEN deadline < ? THEN '%s'
		ELSE '%s' END`,
		domain.DeadlineUnknown,
		domain.DeadlinePast,
		domain.DeadlineThisMonth,
		domain.DeadlineThisQuarter,
		domain.DeadlineLater,
	)

	var rows []ports.GroupCount
	err := r.db.WithContext(ctx).Model(&domain.Scholarship{}).
		Select(bucket+" AS bucket, COUNT(*) AS count", now, monthEnd, quarterEnd).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		r.log.Errorw("scholarship_repo_deadlines_failed", "error", err)
		return nil, storageError(err)
	}
	return rows, nil
}

func (r *scholarshipRepository) ExportRange(ctx context.Context, start, end *time.Time) ([]domain.Scholarship, error) {
	query := r.db.WithContext(ctx).Model(&domain.Scholarship{})
	if start != nil {
		query = query.Where("last_updated >= ?", *start)
	}
	if end != nil {
		query = query.Where("last_updated <= ?", *end)
	}

	var scholarships []domain.Scholarship
	if err := query.Order("last_updated desc").Order("id desc").Find(&scholarships).Error; err != nil {
		r.log.Errorw("scholarship_repo_export_failed", "error", err)
		return nil, storageError(err)
	}
	r.log.Infow("scholarship_repo_export_ok", "count", len(scholarships))
	return scholarships, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a case-insensitive substring pattern for
// LIKE ... ESCAPE '\', so wildcards in s match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
