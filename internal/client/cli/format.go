package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/models"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func jobTableHeader() string {
	return fmt.Sprintf("%-6s %-10s %-8s %-20s %-10s %s", "ID", "STATUS", "TYPE", "HASH", "ATTEMPTS", "CREATED")
}

func formatJobRow(j models.Job) string {
	return fmt.Sprintf("%-6d %-10s %-8s %-20s %-10d %s",
		j.ID, j.Status, j.HashType, shorten(j.HashValue, 20), j.Attempts, formatTime(&j.CreatedAt))
}

// jobActions lists the commands the job's status allows.
func jobActions(j models.Job) []string {
	actions := []string{"show"}
	if !j.Status.Terminal() {
		actions = append(actions, "wait")
	}
	if models.CanDelete(j.Status) {
		actions = append(actions, "delete")
	}
	return actions
}

func formatJob(j models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job #%d\n", j.ID)
	fmt.Fprintf(&b, "  Hash:      %s\n", j.HashValue)
	fmt.Fprintf(&b, "  Type:      %s\n", j.HashType)
	fmt.Fprintf(&b, "  Status:    %s\n", j.Status)
	if j.Result != nil {
		fmt.Fprintf(&b, "  Result:    %s\n", *j.Result)
	}
	fmt.Fprintf(&b, "  Attempts:  %d\n", j.Attempts)
	fmt.Fprintf(&b, "  Created:   %s\n", formatTime(&j.CreatedAt))
	if j.StartedAt != nil {
		fmt.Fprintf(&b, "  Started:   %s\n", formatTime(j.StartedAt))
	}
	if j.CompletedAt != nil {
		fmt.Fprintf(&b, "  Completed: %s\n", formatTime(j.CompletedAt))
	}
	fmt.Fprintf(&b, "  Actions:   %s", strings.Join(jobActions(j), ", "))
	return b.String()
}

func formatIdentity(id models.Identity) string {
	plan := "free"
	if id.IsPaid {
		plan = "paid"
	}
	role := ""
	if id.IsAdmin {
		role = ", admin"
	}
	return fmt.Sprintf("%s <%s> (#%d, %s%s)\n  member since %s, last login %s",
		id.Username, id.Email, id.ID, plan, role, formatTime(&id.CreatedAt), formatTime(id.LastLogin))
}

func formatStats(s models.UserStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total jobs:       %d\n", s.TotalJobs)
	fmt.Fprintf(&b, "Cracked:          %d\n", s.SuccessfulCracks)
	fmt.Fprintf(&b, "Failed:           %d\n", s.FailedAttempts)
	fmt.Fprintf(&b, "Total attempts:   %d\n", s.TotalAttempts)
	fmt.Fprintf(&b, "Success rate:     %.1f%%\n", s.SuccessRate)
	fmt.Fprintf(&b, "Last job:         %s", formatTime(s.LastJobDate))
	return b.String()
}

func formatSummary(s models.StatusSummary) string {
	parts := make([]string, 0, len(s.ByState))
	for st, n := range s.ByState {
		parts = append(parts, fmt.Sprintf("%s=%d", st, n))
	}
	sort.Strings(parts)
	return fmt.Sprintf("Jobs by status: %s (cracked %d of %d)", strings.Join(parts, " "), s.Cracked, s.Total)
}

// countLine renders a count map as sorted "key=n" pairs.
func countLine[K ~string](m map[K]int64) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for k, n := range m {
		parts = append(parts, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

const maxBar = 40

func formatDashboard(d models.Dashboard) string {
	var b strings.Builder
	b.WriteString(formatStats(d.Stats))
	fmt.Fprintf(&b, "\nBy status:        %s", countLine(d.ByStatus))
	fmt.Fprintf(&b, "\nBy hash type:     %s", countLine(d.ByHashType))
	if len(d.JobsPerDay) == 0 {
		return b.String()
	}

	var peak int64
	for _, dc := range d.JobsPerDay {
		peak = max(peak, dc.Count)
	}
	b.WriteString("\nJobs per day:")
	for _, dc := range d.JobsPerDay {
		width := 0
		if peak > 0 {
			width = int(dc.Count * maxBar / peak)
		}
		if dc.Count > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(&b, "\n  %s %-*s %d", dc.Date.Format(time.DateOnly), maxBar, strings.Repeat("#", width), dc.Count)
	}
	return b.String()
}

func formatPlatformStats(s models.PlatformStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Users:          %d (paid %d, admin %d, new this week %d)\n",
		s.Users.Total, s.Users.Paid, s.Users.Admin, s.Users.NewThisWeek)
	fmt.Fprintf(&b, "Jobs:           %d (completed %d, failed %d, queued %d, processing %d, this week %d)\n",
		s.Jobs.Total, s.Jobs.Completed, s.Jobs.Failed, s.Jobs.Queued, s.Jobs.Processing, s.Jobs.ThisWeek)
	fmt.Fprintf(&b, "Installations:  %d (active %d)", s.Installations.Total, s.Installations.Active)
	return b.String()
}

func userTableHeader() string {
	return fmt.Sprintf("%-6s %-20s %-28s %-5s %-6s %s", "ID", "USERNAME", "EMAIL", "PAID", "ADMIN", "LAST LOGIN")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatUserRow(u models.Identity) string {
	return fmt.Sprintf("%-6d %-20s %-28s %-5s %-6s %s",
		u.ID, shorten(u.Username, 20), shorten(u.Email, 28), yesNo(u.IsPaid), yesNo(u.IsAdmin), formatTime(u.LastLogin))
}

func installationTableHeader() string {
	return fmt.Sprintf("%-6s %-36s %-6s %-10s %-10s %s", "ID", "DEVICE", "USER", "PLATFORM", "VERSION", "LAST ACTIVE")
}

func formatInstallationRow(in models.Installation) string {
	user := "-"
	if in.UserID > 0 {
		user = fmt.Sprint(in.UserID)
	}
	return fmt.Sprintf("%-6d %-36s %-6s %-10s %-10s %s",
		in.ID, shorten(in.DeviceID, 36), user, orDash(in.Platform), orDash(in.Version), formatTime(in.LastActive))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSettings(s map[string]string) string {
	if len(s) == 0 {
		return "No settings"
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s = %s", k, s[k]))
	}
	return strings.Join(lines, "\n")
}
