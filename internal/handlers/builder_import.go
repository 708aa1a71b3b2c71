// Package handlers provides the AWS Lambda handlers for the stand lead engine.
package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	s3service "stand-lead-engine/internal/services/s3"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// maxReportedErrors caps the row errors returned in an import result.
const maxReportedErrors = 10

// ImportFiles reads and archives uploaded builder files.
type ImportFiles interface {
	DownloadFile(ctx context.Context, bucket, key string) ([]byte, error)
	Archive(ctx context.Context, bucket, key, prefix string) (string, error)
}

// BuilderImportHandler handles S3 events for uploaded builder directory files.
type BuilderImportHandler struct {
	files  ImportFiles
	writer store.BuilderWriter
	logger *zap.Logger
}

// NewBuilderImportHandler creates a new builder import handler.
func NewBuilderImportHandler(files ImportFiles, writer store.BuilderWriter, logger *zap.Logger) *BuilderImportHandler {
	return &BuilderImportHandler{
		files:  files,
		writer: writer,
		logger: utils.OrDefault(logger, "builder-import"),
	}
}

// ImportResult is the result of processing one or more builder files.
type ImportResult struct {
	Message  string   `json:"message"`
	Files    []string `json:"files"`
	Upserted int      `json:"upserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle imports every CSV object named in the event. A file whose rows are
// all invalid is moved under the failed prefix, any other under processed.
func (h *BuilderImportHandler) Handle(ctx context.Context, s3Event events.S3Event) (ImportResult, error) {
	result := ImportResult{Files: []string{}}

	if len(s3Event.Records) == 0 {
		result.Message = "No records to process"
		return result, nil
	}

	for _, record := range s3Event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return result, fmt.Errorf("failed to decode S3 key: %w", err)
		}
		if !strings.HasSuffix(strings.ToLower(key), ".csv") {
			h.logger.Info("Skipping non-CSV object", zap.String("key", key))
			continue
		}

		if err := h.importFile(ctx, bucket, key, &result); err != nil {
			return result, err
		}
	}

	if len(result.Errors) > maxReportedErrors {
		result.Errors = result.Errors[:maxReportedErrors]
	}
	result.Message = fmt.Sprintf("Imported %d builders from %d files", result.Upserted, len(result.Files))
	return result, nil
}

func (h *BuilderImportHandler) importFile(ctx context.Context, bucket, key string, result *ImportResult) error {
	log := h.logger.With(zap.String("bucket", bucket), zap.String("key", key))
	log.Info("Processing builder import")

	content, err := h.files.DownloadFile(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}

	builders, parseErrors := utils.NewCSVParser().ParseBuilders(string(content))
	for _, e := range parseErrors {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, e))
	}
	result.Files = append(result.Files, key)

	archive := s3service.ProcessedPrefix
	if len(builders) == 0 {
		result.Failed += rowErrors(parseErrors)
		archive = s3service.FailedPrefix
		log.Warn("No valid builders in file", zap.Int("parse_errors", len(parseErrors)))
	} else {
		upsert, err := h.writer.UpsertBuilders(ctx, builders)
		if err != nil {
			return fmt.Errorf("failed to upsert builders from %s: %w", key, err)
		}
		result.Upserted += upsert.UpsertedCount
		result.Failed += upsert.FailedCount + rowErrors(parseErrors)
		result.Errors = append(result.Errors, upsert.Errors...)

		log.Info("Upserted builders",
			zap.Int("upserted", upsert.UpsertedCount),
			zap.Int("failed", upsert.FailedCount),
			zap.Int("parse_errors", len(parseErrors)),
		)
	}

	if _, err := h.files.Archive(ctx, bucket, key, archive); err != nil {
		log.Warn("Failed to archive file", zap.Error(err))
	}
	return nil
}

// rowErrors counts parse errors that refer to a single row.
func rowErrors(errs []error) int {
	n := 0
	for _, e := range errs {
		if strings.HasPrefix(e.Error(), "line ") {
			n++
		}
	}
	return n
}
