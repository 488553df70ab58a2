package document

import (
	"fmt"
	"strings"

	"fka/internal/core"
)

const filenamePrefix = "fka"

var unsafeFilenameChars = strings.NewReplacer("/", "-", "\\", "-", " ", "-")

// Filename derives the output name from the course id and the last token of
// the participant's name: fka_<courseId>_<lastName>.pdf.
func Filename(claim core.Claim) string {
	var last string
	if fields := strings.Fields(claim.Participant.Name); len(fields) > 0 {
		last = fields[len(fields)-1]
	}
	courseID := unsafeFilenameChars.Replace(strings.TrimSpace(claim.Course.ID))
	return fmt.Sprintf("%s_%s_%s.pdf", filenamePrefix, courseID, unsafeFilenameChars.Replace(last))
}
