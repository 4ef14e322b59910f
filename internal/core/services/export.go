package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/striveopps/backend/internal/domain"
)

var exportColumns = []string{
	"id",
	"task_id",
	"title",
	"amount",
	"deadline",
	"field_of_study",
	"level_of_study",
	"eligibility_criteria",
	"application_url",
	"source_url",
	"location_of_study",
	"confidence_score",
	"last_updated",
	"ai_amount_type",
	"ai_is_renewable",
	"ai_is_recurring",
	"ai_confidence_score",
}

// ExportCSV writes the export range as RFC 4180 CSV and returns the number of
// data rows written.
func (s *scholarshipService) ExportCSV(ctx context.Context, w io.Writer, start, end *time.Time) (int, error) {
	scholarships, err := s.Export(ctx, start, end)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return 0, err
	}
	for i := range scholarships {
		if err := cw.Write(csvRecord(&scholarships[i])); err != nil {
			return i, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(scholarships), err
	}

	s.logger.Infow("scholarship_export_csv_ok", "rows", len(scholarships))
	return len(scholarships), nil
}

func csvRecord(s *domain.Scholarship) []string {
	var deadline string
	if s.Deadline != nil {
		deadline = s.Deadline.UTC().Format(time.RFC3339)
	}

	var amountType, renewable, recurring, aiConfidence string
	if summary := s.AISummary(); summary != nil {
		if summary.AmountAnalysis != nil {
			amountType = summary.AmountAnalysis.Type
			renewable = strconv.FormatBool(summary.AmountAnalysis.IsRenewable)
		}
		if summary.DeadlineInfo != nil {
			recurring = strconv.FormatBool(summary.DeadlineInfo.IsRecurring)
		}
		if summary.ConfidenceScore != nil {
			aiConfidence = strconv.FormatFloat(*summary.ConfidenceScore, 'f', -1, 64)
		}
	}

	return []string{
		strconv.FormatUint(uint64(s.ID), 10),
		strconv.FormatUint(uint64(s.TaskID), 10),
		s.Title,
		s.Amount,
		deadline,
		s.FieldOfStudy,
		s.LevelOfStudy,
		s.EligibilityCriteria,
		s.ApplicationURL,
		s.SourceURL,
		s.LocationOfStudy,
		strconv.FormatFloat(s.ConfidenceScore, 'f', -1, 64),
		s.LastUpdated.UTC().Format(time.RFC3339),
		amountType,
		renewable,
		recurring,
		aiConfidence,
	}
}
