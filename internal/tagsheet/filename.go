package tagsheet

import (
	"strings"
	"time"
)

// FileName returns <Project>_<Process|AllProcesses>_TagSheet_<date>.xlsx,
// dated in UTC.
func FileName(project Project, process *Process, at time.Time) string {
	name := sanitize(project.Name)
	if name == "" {
		name = "Project"
	}
	proc := "AllProcesses"
	if process != nil {
		if p := sanitize(process.Name); p != "" {
			proc = p
		}
	}
	return name + "_" + proc + "_TagSheet_" + at.UTC().Format("2006-01-02") + ".xlsx"
}

// sanitize keeps ASCII letters and digits and maps every other run to a
// single underscore.
func sanitize(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	return b.String()
}
