package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	s3service "stand-lead-engine/internal/services/s3"
	"stand-lead-engine/internal/utils"
)

// uploadExpiryMinutes is how long a builder import upload URL stays valid.
const uploadExpiryMinutes = 60

// UploadSigner issues upload URLs for builder import files.
type UploadSigner interface {
	ImportKey(fileName string) string
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for builder import upload URLs.
type PresignedURLHandler struct {
	signer UploadSigner
	logger *zap.Logger
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(signer UploadSigner, logger *zap.Logger) *PresignedURLHandler {
	return &PresignedURLHandler{signer: signer, logger: utils.OrDefault(logger, "presigned-url")}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Presign validates filename and signs an upload URL for it. Blank names
// get a generated one.
func (h *PresignedURLHandler) Presign(ctx context.Context, filename string) (*PresignedURLResponse, int, string) {
	if filename == "" {
		filename = "builders_" + uuid.New().String()[:8] + ".csv"
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, http.StatusBadRequest, "Only CSV files are allowed"
	}

	key := h.signer.ImportKey(sanitizeFilename(filename))

	res, err := h.signer.GeneratePresignedUploadURL(ctx, key, "text/csv", uploadExpiryMinutes)
	if err != nil {
		h.logger.Error("Failed to generate presigned URL", zap.Error(err))
		return nil, http.StatusInternalServerError, "Failed to generate upload URL"
	}

	return &PresignedURLResponse{
		UploadURL: res.URL,
		S3Key:     res.Key,
		ExpiresIn: uploadExpiryMinutes * 60,
	}, http.StatusOK, ""
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	response, status, message := h.Presign(ctx, request.QueryStringParameters["filename"])
	if response == nil {
		return errorResponse(headers, status, message)
	}

	h.logger.Info("Generated presigned URL", zap.String("s3Key", response.S3Key))
	return jsonResponse(headers, http.StatusOK, response)
}

// sanitizeFilename removes unsafe characters from filename.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}
