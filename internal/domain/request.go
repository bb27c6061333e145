package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyArea is returned for an assessment request that names no area.
var ErrEmptyArea = errors.New("assessment request has no area")

// RawRequest is an unprocessed message from the assessment request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AssessmentRequest asks for the assessment of one area.
type AssessmentRequest struct {
	Area string `json:"area"`
}

// ParseAssessmentRequest decodes a request payload. An empty payload falls
// back to the message key as the area name.
func ParseAssessmentRequest(raw RawRequest) (AssessmentRequest, error) {
	var req AssessmentRequest
	if len(raw.Value) > 0 {
		if err := json.Unmarshal(raw.Value, &req); err != nil {
			return AssessmentRequest{}, fmt.Errorf("parse assessment request: %w", err)
		}
	}
	req.Area = strings.TrimSpace(req.Area)
	if req.Area == "" {
		req.Area = strings.TrimSpace(string(raw.Key))
	}
	if req.Area == "" {
		return AssessmentRequest{}, ErrEmptyArea
	}
	return req, nil
}
