package fillreporttemplate

import "encoding/json"

// Input is the job's variables. ReportData is the report record, either as
// a JSON object or as a string holding one. An explicit TemplatePath must lie
// in the template directory and an explicit OutputPath in the output
// directory; relative paths are taken from those directories.
type Input struct {
	TemplatePath string          `json:"templatePath,omitempty"`
	OutputPath   string          `json:"outputPath,omitempty"`
	ReportData   json.RawMessage `json:"reportData"`
}

type Output struct {
	ReportID   string `json:"reportId"`
	Success    bool   `json:"success"`
	OutputPath string `json:"outputPath"`
}
