package task

import (
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
)

// ValidateText rejects task text that is empty after trimming.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return clierr.New(clierr.ValidationFailed, "task text must not be empty")
	}
	return nil
}

// ValidatePriority checks that p is one of the known levels.
func ValidatePriority(p Priority) error {
	if p.Rank() >= 0 {
		return nil
	}
	allowed := make([]string, len(Priorities))
	for i, q := range Priorities {
		allowed[i] = string(q)
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", string(p)).
		WithDetails(map[string]any{
			"priority": string(p),
			"allowed":  allowed,
		})
}

// NotFound returns a CLIError for an unknown task id.
func NotFound(id int64) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// ParseID parses a single task id.
func ParseID(input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidateTaskID(input)
	}
	return id, nil
}

// ParseIDs splits a comma-separated ID string into deduplicated ids.
func ParseIDs(arg string) ([]int64, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int64]bool, len(parts))
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := ParseID(p)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
