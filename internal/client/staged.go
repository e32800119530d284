package client

import (
	"context"
	"net/http"

	"github.com/lawndlwd/review-client/internal/logger"
)

const stagedFilesPath = "/api/staged-files"

// GetStagedFiles returns the staged file paths reported by the service.
// Non-string entries are dropped; any failure yields an empty slice.
func (c *ReviewClient) GetStagedFiles(ctx context.Context) []string {
	ctx = logger.WithOp(ctx, "staged-files")

	req, err := c.newRequest(ctx, http.MethodGet, stagedFilesPath, nil, nil)
	if err != nil {
		logFailure(ctx, c.log, "Failed to get staged files", err)
		return []string{}
	}

	obj, err := c.send(req)
	if err != nil {
		if failureKind(err) == "JSONDecodeError" {
			logFailure(ctx, c.log, "Invalid response format", err)
		} else {
			logFailure(ctx, c.log, "Failed to get staged files", err)
		}
		return []string{}
	}

	raw, ok := obj["files"].([]any)
	if !ok {
		c.log.Warnf(ctx, "Invalid response format: files is not a list")
		return []string{}
	}

	files := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			files = append(files, s)
		}
	}
	return files
}
