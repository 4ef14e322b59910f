package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/striveopps/backend/internal/core/ports"
	"github.com/striveopps/backend/internal/domain"
	"github.com/striveopps/backend/internal/infrastructure/logger"
	"github.com/striveopps/backend/internal/metrics"
)

type IngestionServiceConfig struct {
	Tasks  ports.TaskService
	Logger *logger.Logger
}

type ingestionService struct {
	tasks  ports.TaskService
	logger *logger.Logger
}

func NewIngestionService(cfg IngestionServiceConfig) ports.IngestionService {
	return &ingestionService{
		tasks:  cfg.Tasks,
		logger: cfg.Logger,
	}
}

// BulkSubmit creates one task per distinct valid URL. Blank lines are ignored;
// malformed and duplicate URLs are counted, never fatal.
func (s *ingestionService) BulkSubmit(ctx context.Context, urls []string) (*ports.SubmissionResult, error) {
	result := &ports.SubmissionResult{Entries: make([]ports.SubmissionEntry, 0, len(urls))}

	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		entry := ports.SubmissionEntry{URL: raw}
		task, err := s.tasks.CreateTask(ctx, raw)
		switch {
		case err == nil:
			entry.Outcome = ports.SubmissionCreated
			entry.TaskID = task.ID
			result.Created++
		case errors.Is(err, domain.ErrDuplicateURL):
			entry.Outcome = ports.SubmissionDuplicate
			result.Duplicate++
		case errors.Is(err, domain.ErrValidation):
			entry.Outcome = ports.SubmissionInvalid
			result.Invalid++
		default:
			s.logger.Errorw("ingestion_submit_failed", "url", raw, "created", result.Created, "error", err)
			return nil, err
		}
		result.Entries = append(result.Entries, entry)
	}

	metrics.RecordSubmissions(result.Created, result.Duplicate, result.Invalid)
	s.logger.Infow("ingestion_bulk_ok",
		"created", result.Created,
		"duplicate", result.Duplicate,
		"invalid", result.Invalid,
	)
	return result, nil
}

func (s *ingestionService) SubmitFromFile(ctx context.Context, content []byte, format ports.FileFormat) (*ports.SubmissionResult, error) {
	var (
		urls []string
		err  error
	)
	switch format {
	case ports.FileFormatTXT:
		urls, err = readLines(content)
	case ports.FileFormatCSV:
		urls, err = readFirstColumn(content)
	default:
		return nil, ErrUnsupportedFileFormat
	}
	if err != nil {
		s.logger.Infow("ingestion_file_rejected", "format", format, "error", err)
		return nil, err
	}
	return s.BulkSubmit(ctx, urls)
}

// ParseFileFormat maps a file name onto its submission format.
func ParseFileFormat(filename string) (ports.FileFormat, error) {
	lower := strings.ToLower(strings.TrimSpace(filename))
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ports.FileFormatCSV, nil
	case strings.HasSuffix(lower, ".txt"):
		return ports.FileFormatTXT, nil
	}
	return "", ErrUnsupportedFileFormat
}

func readLines(content []byte) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrMalformedFile
	}
	return urls, nil
}

func readFirstColumn(content []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var urls []string
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrMalformedFile
		}
		if len(record) == 0 {
			continue
		}
		cell := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		if first {
			first = false
			if strings.EqualFold(cell, "url") {
				continue
			}
		}
		urls = append(urls, cell)
	}
	return urls, nil
}
