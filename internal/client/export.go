package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lawndlwd/review-client/internal/logger"
	"github.com/lawndlwd/review-client/internal/types"
)

const (
	exportPath           = "/api/export-for-ai"
	exportIndividualPath = "/api/export-individual-reviews"
)

func buildPayload(req types.ReviewRequest) types.ExportPayload {
	excluded := req.ExcludePatterns
	if excluded == nil {
		excluded = []string{}
	}
	return types.ExportPayload{
		Comments:      req.Comments,
		LineComments:  map[string]string{},
		ExcludedFiles: excluded,
	}
}

// encodePayload marshals the payload and checks the encoded form before it
// may leave the process.
func encodePayload(p types.ExportPayload) ([]byte, bool) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false
	}
	if !validateExportPayload(decoded) {
		return nil, false
	}
	return body, true
}

// validateExportPayload accepts only an object whose comments field is an
// object and whose excludedFiles field is an array of strings.
func validateExportPayload(payload any) bool {
	obj, ok := payload.(map[string]any)
	if !ok {
		return false
	}

	if _, ok := obj["comments"].(map[string]any); !ok {
		return false
	}

	excluded, ok := obj["excludedFiles"].([]any)
	if !ok {
		return false
	}
	for _, f := range excluded {
		if _, ok := f.(string); !ok {
			return false
		}
	}
	return true
}

// ExportForAIReview submits the review request. It reports success only when
// the service accepted the payload and answered with a decodable body.
func (c *ReviewClient) ExportForAIReview(ctx context.Context, request types.ReviewRequest) bool {
	ctx = logger.WithOp(ctx, "export")

	body, ok := encodePayload(buildPayload(request))
	if !ok {
		c.log.Errorf(ctx, "Invalid export payload")
		c.out.ExportFailed("Invalid payload")
		return false
	}

	obj, err := c.post(ctx, exportPath, body)
	if err != nil {
		c.reportExportError(ctx, err)
		return false
	}

	res := exportResultFrom(obj)
	c.log.Infof(ctx, "Review exported successfully: %d files processed", res.FilesProcessed)
	c.out.ExportSucceeded(res.FilesProcessed)
	return true
}

func exportResultFrom(obj map[string]any) types.ExportResult {
	processed, _ := intField(obj, "filesProcessed")
	return types.ExportResult{FilesProcessed: processed, Fields: obj}
}

// ExportIndividualReviews asks the service to write one review file per
// staged file.
func (c *ReviewClient) ExportIndividualReviews(ctx context.Context, request types.ReviewRequest) (types.IndividualExport, bool) {
	ctx = logger.WithOp(ctx, "export-individual")

	body, ok := encodePayload(buildPayload(request))
	if !ok {
		c.log.Errorf(ctx, "Invalid export payload")
		c.out.ExportFailed("Invalid payload")
		return types.IndividualExport{}, false
	}

	obj, err := c.post(ctx, exportIndividualPath, body)
	if err != nil {
		c.reportExportError(ctx, err)
		return types.IndividualExport{}, false
	}

	var res types.IndividualExport
	res.Directory, _ = stringField(obj, "directory")
	res.FilesCreated, _ = intField(obj, "filesCreated")
	c.log.Infof(ctx, "Individual reviews exported: %d files created", res.FilesCreated)
	c.out.IndividualExported(res.FilesCreated, res.Directory)
	return res, true
}

func (c *ReviewClient) post(ctx context.Context, path string, body []byte) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

// reportExportError logs only the failure kind; request contents and error
// text never reach the log or the console.
func (c *ReviewClient) reportExportError(ctx context.Context, err error) {
	if failureKind(err) == "JSONDecodeError" {
		logFailure(ctx, c.log, "Invalid export response", err)
		c.out.ExportFailed("Invalid response")
		return
	}
	logFailure(ctx, c.log, "Export request failed", err)
	c.out.ExportFailed("Network error")
}
