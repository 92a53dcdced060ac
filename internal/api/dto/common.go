package dto

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// ReorderResponse acknowledges a bulk reorder. Entries that failed the
// ownership check are reported back instead of being silently dropped.
type ReorderResponse struct {
	Success    bool     `json:"success"`
	SkippedIDs []string `json:"skipped_ids,omitempty"`
}
