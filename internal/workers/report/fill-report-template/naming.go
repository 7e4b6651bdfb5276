package fillreporttemplate

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"report-workers/internal/report"
)

var unsafeNameChars = regexp.MustCompile(`[\s/\\]+`)

// FileName returns the default report file name:
// <childName>_Gelisim_Raporu_<YYYY-MM-DD>.docx with whitespace runs and path
// separators replaced by "_", or report-<id>.docx when the record has no
// child name.
func FileName(rec report.Record, now time.Time, id uuid.UUID) string {
	name := strings.TrimSpace(rec[report.ChildName])
	if name == "" {
		return "report-" + id.String() + ".docx"
	}
	return unsafeNameChars.ReplaceAllString(name, "_") + "_Gelisim_Raporu_" + now.Format("2006-01-02") + ".docx"
}
