package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/lawndlwd/review-client/internal/logger"
	"github.com/lawndlwd/review-client/internal/types"
)

const (
	summaryPath    = "/api/summary"
	fileDiffPath   = "/api/file-diff"
	logCommentPath = "/api/log-comment"
)

// GetSummary returns the staged diff stats. Successful answers are cached
// for a short while.
func (c *ReviewClient) GetSummary(ctx context.Context) types.Summary {
	ctx = logger.WithOp(ctx, "summary")

	if s, ok := c.summaryCache.Get(summaryPath); ok {
		return s
	}

	req, err := c.newRequest(ctx, http.MethodGet, summaryPath, nil, nil)
	if err != nil {
		logFailure(ctx, c.log, "Failed to get summary", err)
		return types.Summary{}
	}
	obj, err := c.send(req)
	if err != nil {
		logFailure(ctx, c.log, "Failed to get summary", err)
		return types.Summary{}
	}

	var s types.Summary
	s.Stats, _ = stringField(obj, "stats")
	s.Error, _ = stringField(obj, "error")
	if s.Error == "" {
		c.summaryCache.Add(summaryPath, s)
	}
	return s
}

// GetFileDiff returns the staged diff of one file. Unsafe paths are rejected
// without a request.
func (c *ReviewClient) GetFileDiff(ctx context.Context, file string) (types.FileDiff, bool) {
	ctx = logger.WithOp(ctx, "file-diff")

	if !validFilePath(file) {
		c.log.Warnf(ctx, "Rejected file path before request")
		return types.FileDiff{}, false
	}
	if d, ok := c.diffCache.Get(file); ok {
		return d, true
	}

	req, err := c.newRequest(ctx, http.MethodGet, fileDiffPath, url.Values{"file": {file}}, nil)
	if err != nil {
		logFailure(ctx, c.log, "Failed to get file diff", err)
		return types.FileDiff{}, false
	}
	obj, err := c.send(req)
	if err != nil {
		logFailure(ctx, c.log, "Failed to get file diff", err)
		return types.FileDiff{}, false
	}

	d := types.FileDiff{File: file}
	if f, ok := stringField(obj, "file"); ok {
		d.File = f
	}
	d.Diff, _ = stringField(obj, "diff")
	d.Size, _ = intField(obj, "size")
	c.diffCache.Add(file, d)
	return d, true
}

// LogComment forwards a reviewer comment to the service log.
func (c *ReviewClient) LogComment(ctx context.Context, entry types.CommentLog) bool {
	ctx = logger.WithOp(ctx, "log-comment")

	if strings.TrimSpace(entry.Type) == "" || strings.TrimSpace(entry.File) == "" || strings.TrimSpace(entry.Comment) == "" {
		c.log.Warnf(ctx, "Comment log requires type, file and comment")
		return false
	}

	body, err := json.Marshal(entry)
	if err != nil {
		logFailure(ctx, c.log, "Invalid comment log", err)
		return false
	}
	obj, err := c.post(ctx, logCommentPath, body)
	if err != nil {
		logFailure(ctx, c.log, "Failed to log comment", err)
		return false
	}

	ok, _ := obj["success"].(bool)
	return ok
}

func validFilePath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	if strings.ContainsRune(p, 0) || strings.ContainsAny(p, `<>"|*?`) {
		return false
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || filepath.IsAbs(p) {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return false
		}
	}
	return true
}
