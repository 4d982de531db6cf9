package model

import (
	"encoding/json"
	"fmt"
)

// ImportSnapshot parses an uploaded resume snapshot. Unparsable or
// schema-invalid input is reported without partial results so callers can
// leave their current state untouched.
func ImportSnapshot(data []byte) (ResumeData, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ResumeData{}, fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	if err := ValidateMap(raw); err != nil {
		return ResumeData{}, err
	}
	var resume ResumeData
	if err := json.Unmarshal(data, &resume); err != nil {
		return ResumeData{}, fmt.Errorf("snapshot has an unexpected shape: %w", err)
	}
	return resume, nil
}

// ExportSnapshot serializes the full resume for file download.
func ExportSnapshot(r ResumeData) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
