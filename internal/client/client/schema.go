package client

import (
	"sort"
	"strings"

	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/timex"
)

// Wire shapes of the API. Every decoded response is validated here and
// turned into a models value; anything missing or inconsistent becomes a
// malformed-response ErrTransport instead of zero values leaking inward.

// errorBody covers application errors ("error") and the token layer's
// rejections ("msg").
type errorBody struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	Msg         string `json:"msg"`
	PINRequired bool   `json:"pin_required"`
}

func (e errorBody) text() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	}
	return e.Msg
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	PIN      string `json:"pin,omitempty"`
}

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PIN      string `json:"pin,omitempty"`
}

type setPINBody struct {
	PIN        string `json:"pin"`
	CurrentPIN string `json:"current_pin,omitempty"`
}

type installationBody struct {
	DeviceID string `json:"device_id"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

type createJobBody struct {
	HashValue string `json:"hash_value"`
	HashType  string `json:"hash_type,omitempty"`
}

type userDTO struct {
	ID        *int64  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	IsPaid    bool    `json:"is_paid"`
	IsAdmin   bool    `json:"is_admin"`
	CreatedAt *string `json:"created_at"`
	LastLogin *string `json:"last_login"`
}

func (u *userDTO) toModel() (*models.Identity, error) {
	if u == nil {
		return nil, malformed("missing user")
	}
	if u.ID == nil || *u.ID <= 0 {
		return nil, malformed("user without id")
	}
	if strings.TrimSpace(u.Username) == "" {
		return nil, malformed("user %d without username", *u.ID)
	}

	id := &models.Identity{
		ID:       *u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsPaid:   u.IsPaid,
		IsAdmin:  u.IsAdmin,
	}
	created, err := timex.ParseOptionalTimestamp(u.CreatedAt)
	if err != nil {
		return nil, malformed("user created_at: %v", err)
	}
	if created != nil {
		id.CreatedAt = *created
	}
	if id.LastLogin, err = timex.ParseOptionalTimestamp(u.LastLogin); err != nil {
		return nil, malformed("user last_login: %v", err)
	}
	return id, nil
}

type authResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         *userDTO `json:"user"`
}

func (r *authResponse) toModel() (*models.AuthResult, error) {
	if r.AccessToken == "" || r.RefreshToken == "" {
		return nil, malformed("missing token pair")
	}
	identity, err := r.User.toModel()
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{
		Credentials: models.Credentials{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken},
		Identity:    *identity,
	}, nil
}

type meResponse struct {
	User *userDTO `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type jobDTO struct {
	ID          *int64  `json:"id"`
	UserID      int64   `json:"user_id"`
	HashValue   string  `json:"hash_value"`
	HashType    string  `json:"hash_type"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	Result      *string `json:"result"`
	Attempts    int64   `json:"attempts"`
	CreatedAt   *string `json:"created_at"`
	StartedAt   *string `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
}

func (j *jobDTO) toModel() (*models.Job, error) {
	if j == nil {
		return nil, malformed("missing job")
	}
	if j.ID == nil || *j.ID <= 0 {
		return nil, malformed("job without id")
	}
	status := models.JobStatus(j.Status)
	if !status.Valid() {
		return nil, malformed("job %d has unknown status %q", *j.ID, j.Status)
	}
	if j.Result != nil && status != models.JobStatusCompleted {
		return nil, malformed("job %d carries a result while %s", *j.ID, status)
	}
	if j.HashValue == "" {
		return nil, malformed("job %d without hash_value", *j.ID)
	}
	if j.Attempts < 0 {
		return nil, malformed("job %d with negative attempts", *j.ID)
	}

	hashType := models.HashType(j.HashType)
	if hashType == "" {
		hashType = models.HashTypeUnknown
	}

	job := &models.Job{
		ID:        *j.ID,
		UserID:    j.UserID,
		HashValue: j.HashValue,
		HashType:  hashType,
		Status:    status,
		Result:    j.Result,
		Attempts:  j.Attempts,
		Priority:  j.Priority,
	}

	created, err := timex.ParseOptionalTimestamp(j.CreatedAt)
	if err != nil {
		return nil, malformed("job %d created_at: %v", *j.ID, err)
	}
	if created != nil {
		job.CreatedAt = *created
	}
	if job.StartedAt, err = timex.ParseOptionalTimestamp(j.StartedAt); err != nil {
		return nil, malformed("job %d started_at: %v", *j.ID, err)
	}
	if job.CompletedAt, err = timex.ParseOptionalTimestamp(j.CompletedAt); err != nil {
		return nil, malformed("job %d completed_at: %v", *j.ID, err)
	}
	return job, nil
}

func jobsToModels(in []jobDTO) ([]models.Job, error) {
	out := make([]models.Job, 0, len(in))
	for i := range in {
		j, err := in[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, nil
}

type jobResponse struct {
	Job *jobDTO `json:"job"`
}

type jobListResponse struct {
	Jobs    *[]jobDTO `json:"jobs"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Pages   *int      `json:"pages"`
}

func (r *jobListResponse) toModel() (*models.JobPage, error) {
	if r.Jobs == nil {
		return nil, malformed("missing jobs")
	}
	if r.Pages == nil || *r.Pages < 0 {
		return nil, malformed("missing pages")
	}
	jobs, err := jobsToModels(*r.Jobs)
	if err != nil {
		return nil, err
	}
	return &models.JobPage{
		Jobs:       jobs,
		Page:       r.Page,
		PerPage:    r.PerPage,
		Total:      r.Total,
		TotalPages: *r.Pages,
	}, nil
}

type statisticsDTO struct {
	TotalJobs          int64   `json:"total_jobs"`
	SuccessfulCracks   int64   `json:"successful_cracks"`
	FailedAttempts     int64   `json:"failed_attempts"`
	TotalHashesCracked int64   `json:"total_hashes_cracked"`
	TotalAttempts      int64   `json:"total_attempts"`
	LastJobDate        *string `json:"last_job_date"`
}

type userStatsResponse struct {
	Statistics  *statisticsDTO `json:"statistics"`
	SuccessRate float64        `json:"success_rate"`
	RecentJobs  []jobDTO       `json:"recent_jobs"`
}

func (r *userStatsResponse) toModel() (*models.UserStats, error) {
	if r.Statistics == nil {
		return nil, malformed("missing statistics")
	}
	recent, err := jobsToModels(r.RecentJobs)
	if err != nil {
		return nil, err
	}
	st, err := r.Statistics.toModel()
	if err != nil {
		return nil, err
	}
	st.SuccessRate = r.SuccessRate
	st.RecentJobs = recent
	return st, nil
}

func (s *statisticsDTO) toModel() (*models.UserStats, error) {
	last, err := timex.ParseOptionalTimestamp(s.LastJobDate)
	if err != nil {
		return nil, malformed("last_job_date: %v", err)
	}
	return &models.UserStats{
		TotalJobs:          s.TotalJobs,
		SuccessfulCracks:   s.SuccessfulCracks,
		FailedAttempts:     s.FailedAttempts,
		TotalHashesCracked: s.TotalHashesCracked,
		TotalAttempts:      s.TotalAttempts,
		LastJobDate:        last,
	}, nil
}

type dailyCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type dashboardResponse struct {
	Statistics           *statisticsDTO   `json:"statistics"`
	StatusDistribution   map[string]int64 `json:"status_distribution"`
	JobsOverTime         []dailyCountDTO  `json:"jobs_over_time"`
	HashTypeDistribution map[string]int64 `json:"hash_type_distribution"`
}

func (r *dashboardResponse) toModel() (*models.Dashboard, error) {
	if r.Statistics == nil {
		return nil, malformed("missing statistics")
	}
	st, err := r.Statistics.toModel()
	if err != nil {
		return nil, err
	}

	d := &models.Dashboard{
		Stats:      *st,
		ByStatus:   make(map[models.JobStatus]int64, len(r.StatusDistribution)),
		ByHashType: make(map[models.HashType]int64, len(r.HashTypeDistribution)),
	}
	for k, n := range r.StatusDistribution {
		status := models.JobStatus(k)
		if !status.Valid() {
			return nil, malformed("status_distribution has unknown status %q", k)
		}
		d.ByStatus[status] = n
	}
	for k, n := range r.HashTypeDistribution {
		d.ByHashType[models.HashType(k)] = n
	}
	for _, dc := range r.JobsOverTime {
		day, err := timex.ParseTimestamp(dc.Date)
		if err != nil {
			return nil, malformed("jobs_over_time: %v", err)
		}
		d.JobsPerDay = append(d.JobsPerDay, models.DailyCount{Date: day, Count: dc.Count})
	}
	sort.Slice(d.JobsPerDay, func(i, j int) bool { return d.JobsPerDay[i].Date.Before(d.JobsPerDay[j].Date) })
	return d, nil
}

// Admin shapes.

type pageDTO struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   *int `json:"pages"`
}

func (p pageDTO) check() error {
	if p.Pages == nil || *p.Pages < 0 {
		return malformed("missing pages")
	}
	return nil
}

type userListResponse struct {
	pageDTO
	Users *[]userDTO `json:"users"`
}

func (r *userListResponse) toModel() (*models.UserPage, error) {
	if r.Users == nil {
		return nil, malformed("missing users")
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	users := make([]models.Identity, 0, len(*r.Users))
	for i := range *r.Users {
		u, err := (*r.Users)[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return &models.UserPage{
		Users:      users,
		Page:       r.Page,
		PerPage:    r.PerPage,
		Total:      r.Total,
		TotalPages: *r.Pages,
	}, nil
}

type userResponse struct {
	User *userDTO `json:"user"`
}

type grantAdminBody struct {
	AdminPIN string `json:"admin_pin"`
}

type installationDTO struct {
	ID          *int64  `json:"id"`
	DeviceID    string  `json:"device_id"`
	UserID      *int64  `json:"user_id"`
	Platform    *string `json:"platform"`
	Version     *string `json:"version"`
	InstalledAt *string `json:"installed_at"`
	LastActive  *string `json:"last_active"`
}

func (d *installationDTO) toModel() (*models.Installation, error) {
	if d.ID == nil || *d.ID <= 0 {
		return nil, malformed("installation without id")
	}
	if d.DeviceID == "" {
		return nil, malformed("installation %d without device_id", *d.ID)
	}
	in := &models.Installation{ID: *d.ID, DeviceID: d.DeviceID}
	if d.UserID != nil {
		in.UserID = *d.UserID
	}
	if d.Platform != nil {
		in.Platform = *d.Platform
	}
	if d.Version != nil {
		in.Version = *d.Version
	}
	var err error
	if in.InstalledAt, err = timex.ParseOptionalTimestamp(d.InstalledAt); err != nil {
		return nil, malformed("installation %d installed_at: %v", *d.ID, err)
	}
	if in.LastActive, err = timex.ParseOptionalTimestamp(d.LastActive); err != nil {
		return nil, malformed("installation %d last_active: %v", *d.ID, err)
	}
	return in, nil
}

type installationListResponse struct {
	pageDTO
	Installations *[]installationDTO `json:"installations"`
}

func (r *installationListResponse) toModel() (*models.InstallationPage, error) {
	if r.Installations == nil {
		return nil, malformed("missing installations")
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	out := make([]models.Installation, 0, len(*r.Installations))
	for i := range *r.Installations {
		in, err := (*r.Installations)[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return &models.InstallationPage{
		Installations: out,
		Page:          r.Page,
		PerPage:       r.PerPage,
		Total:         r.Total,
		TotalPages:    *r.Pages,
	}, nil
}

type platformStatsResponse struct {
	Users *struct {
		Total       int64 `json:"total"`
		Paid        int64 `json:"paid"`
		Admin       int64 `json:"admin"`
		NewThisWeek int64 `json:"new_this_week"`
	} `json:"users"`
	Jobs *struct {
		Total      int64 `json:"total"`
		Completed  int64 `json:"completed"`
		Failed     int64 `json:"failed"`
		Queued     int64 `json:"queued"`
		Processing int64 `json:"processing"`
		ThisWeek   int64 `json:"this_week"`
	} `json:"jobs"`
	Installations *struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"installations"`
}

func (r *platformStatsResponse) toModel() (*models.PlatformStats, error) {
	if r.Users == nil || r.Jobs == nil || r.Installations == nil {
		return nil, malformed("incomplete platform stats")
	}
	return &models.PlatformStats{
		Users:         models.UserCounts(*r.Users),
		Jobs:          models.JobCounts(*r.Jobs),
		Installations: models.InstallationCounts(*r.Installations),
	}, nil
}

type settingsResponse struct {
	Settings *map[string]string `json:"settings"`
}
