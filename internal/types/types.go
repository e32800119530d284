package types

// ReviewRequest is what a caller wants exported for review.
type ReviewRequest struct {
	Files           []string
	Comments        map[string]string
	ExcludePatterns []string
}

// ExportPayload is the JSON body sent to the export endpoints.
type ExportPayload struct {
	Comments      map[string]string `json:"comments"`
	LineComments  map[string]string `json:"lineComments"`
	ExcludedFiles []string          `json:"excludedFiles"`
}

// HealthStatus is the decoded body of the health endpoint. Status and Message
// are only set when the service sent them as strings; Fields keeps the raw body.
type HealthStatus struct {
	Status  string
	Message string
	Fields  map[string]any
}

// Get returns a recognized field or the raw value of any other field.
func (h HealthStatus) Get(key string) (any, bool) {
	switch key {
	case "status":
		return h.Status, h.Status != ""
	case "message":
		return h.Message, h.Message != ""
	}
	v, ok := h.Fields[key]
	return v, ok
}

// ExportResult is the decoded body of the export endpoint.
type ExportResult struct {
	FilesProcessed int
	Fields         map[string]any
}

type Summary struct {
	Stats string `json:"stats"`
	Error string `json:"error,omitempty"`
}

type FileDiff struct {
	File string `json:"file"`
	Diff string `json:"diff"`
	Size int    `json:"size"`
}

type IndividualExport struct {
	Directory    string `json:"directory"`
	FilesCreated int    `json:"filesCreated"`
}

// CommentLog is a single reviewer comment forwarded to the service log.
type CommentLog struct {
	Type       string `json:"type"`
	File       string `json:"file"`
	LineNumber int    `json:"lineNumber,omitempty"`
	Comment    string `json:"comment"`
}

type CodeContext struct {
	File         string
	Language     string
	ChangedLines []int          // Line numbers that were changed
	Surrounding  map[int]string // Line number -> surrounding context (5 lines before/after)
	Scopes       map[int]string // Line number -> enclosing function or class name
}
