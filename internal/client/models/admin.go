package models

import "time"

// UserPage is one page of the admin user listing, newest accounts first.
type UserPage struct {
	Users      []Identity
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Installation is a client install as recorded by the server. UserID is
// zero for installs never bound to an account.
type Installation struct {
	ID          int64
	DeviceID    string
	UserID      int64
	Platform    string
	Version     string
	InstalledAt *time.Time
	LastActive  *time.Time
}

// InstallationPage is one page of the admin installation listing.
type InstallationPage struct {
	Installations []Installation
	Page          int
	PerPage       int
	Total         int
	TotalPages    int
}

type UserCounts struct {
	Total       int64
	Paid        int64
	Admin       int64
	NewThisWeek int64
}

type JobCounts struct {
	Total      int64
	Completed  int64
	Failed     int64
	Queued     int64
	Processing int64
	ThisWeek   int64
}

// InstallationCounts: Active means seen during the last seven days.
type InstallationCounts struct {
	Total  int64
	Active int64
}

// PlatformStats are the service-wide counters shown to administrators.
type PlatformStats struct {
	Users         UserCounts
	Jobs          JobCounts
	Installations InstallationCounts
}
