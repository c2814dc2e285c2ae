package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/client/services"
)

const adminUsage = "Usage: admin stats | users [page] | upgrade <id> | grant <id> | installations [page] | jobs [status] [page] | settings | set <key> <value>"

// Admin dispatches the admin subcommands. The service refuses non-admin
// sessions before any request is made.
func (a *App) Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn(adminUsage)
		return nil
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "stats":
		return a.adminStats(ctx)
	case "users":
		return a.adminUsers(ctx, rest)
	case "upgrade":
		return a.adminUpgrade(ctx, rest)
	case "grant":
		return a.adminGrant(ctx, rest)
	case "installations":
		return a.adminInstallations(ctx, rest)
	case "jobs":
		return a.adminJobs(ctx, rest)
	case "settings":
		return a.adminSettings(ctx)
	case "set":
		return a.adminSet(ctx, rest)
	default:
		printlnFn(adminUsage)
		return fmt.Errorf("%w: unknown admin command %q", client.ErrValidation, sub)
	}
}

func pageArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid page %q", client.ErrValidation, args[0])
	}
	return n, nil
}

func userIDArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: user id is required", client.ErrValidation)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", client.ErrValidation, args[0])
	}
	return id, nil
}

func (a *App) adminStats(ctx context.Context) error {
	st, err := a.admin.PlatformStats(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatPlatformStats(*st))
	return nil
}

func (a *App) adminUsers(ctx context.Context, args []string) error {
	page, err := pageArg(args)
	if err != nil {
		return a.report(err)
	}
	p, err := a.admin.Users(ctx, page, services.DefaultPerPage)
	if err != nil {
		return a.report(err)
	}
	if len(p.Users) == 0 {
		printlnFn("No users")
		return nil
	}
	printlnFn(userTableHeader())
	for _, u := range p.Users {
		printlnFn(formatUserRow(u))
	}
	printlnFn(fmt.Sprintf("page %d of %d (%d users)", p.Page, p.TotalPages, p.Total))
	return nil
}

func (a *App) adminUpgrade(ctx context.Context, args []string) error {
	id, err := userIDArg(args)
	if err != nil {
		return a.report(err)
	}
	u, err := a.admin.UpgradeUser(ctx, id)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Upgraded:", formatIdentity(*u))
	return nil
}

// adminGrant asks for the server admin PIN; it is never taken from args so
// it stays out of shell history.
func (a *App) adminGrant(ctx context.Context, args []string) error {
	id, err := userIDArg(args)
	if err != nil {
		return a.report(err)
	}
	pin, err := a.readSecret("Enter admin PIN")
	if err != nil {
		return err
	}
	u, err := a.admin.GrantAdmin(ctx, id, pin)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Granted admin:", formatIdentity(*u))
	return nil
}

func (a *App) adminInstallations(ctx context.Context, args []string) error {
	page, err := pageArg(args)
	if err != nil {
		return a.report(err)
	}
	p, err := a.admin.Installations(ctx, page, services.DefaultPerPage)
	if err != nil {
		return a.report(err)
	}
	if len(p.Installations) == 0 {
		printlnFn("No installations")
		return nil
	}
	printlnFn(installationTableHeader())
	for _, in := range p.Installations {
		printlnFn(formatInstallationRow(in))
	}
	printlnFn(fmt.Sprintf("page %d of %d (%d installations)", p.Page, p.TotalPages, p.Total))
	return nil
}

// adminJobs takes an optional status and page in any order, like "list".
func (a *App) adminJobs(ctx context.Context, args []string) error {
	f := services.JobFilter{Page: 1}
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			f.Page = n
			continue
		}
		f.Status = models.JobStatus(arg)
	}

	p, err := a.admin.Jobs(ctx, f)
	if err != nil {
		return a.report(err)
	}
	if len(p.Jobs) == 0 {
		printlnFn("No jobs")
		return nil
	}
	printlnFn("USER   " + jobTableHeader())
	for _, j := range p.Jobs {
		printlnFn(fmt.Sprintf("%-6d %s", j.UserID, formatJobRow(j)))
	}
	printlnFn(fmt.Sprintf("page %d of %d (%d jobs)", p.Page, p.TotalPages, p.Total))
	return nil
}

func (a *App) adminSettings(ctx context.Context) error {
	s, err := a.admin.Settings(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatSettings(s))
	return nil
}

// adminSet joins everything after the key so values may contain spaces.
func (a *App) adminSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.report(fmt.Errorf("%w: usage: admin set <key> <value>", client.ErrValidation))
	}
	key, value := args[0], strings.Join(args[1:], " ")
	if err := a.admin.UpdateSettings(ctx, map[string]string{key: value}); err != nil {
		return a.report(err)
	}
	printlnFn("Setting", key, "updated")
	return nil
}
