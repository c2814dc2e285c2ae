package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/client/services"
)

// Submit takes the hash from args or prompts for it. An optional second
// argument selects the hash type; auto-detection is the default.
func (a *App) Submit(ctx context.Context, args []string) error {
	var hash, typ string
	switch len(args) {
	case 0:
		v, err := getSimpleText(a.reader, "Enter hash value", a.out)
		if err != nil {
			return err
		}
		hash = v
	case 1:
		hash = args[0]
	default:
		hash, typ = args[0], args[1]
	}

	hashType, ok := models.ParseHashType(typ)
	if !ok {
		return a.report(fmt.Errorf("%w: unsupported hash type %q (one of %v)", client.ErrValidation, typ, models.SubmittableHashTypes))
	}
	if hashType == models.HashTypeAuto && hash != "" {
		printlnFn("Looks like:", models.DetectHashType(hash))
	}

	job, err := a.jobs.Submit(ctx, hash, hashType)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Job submitted:")
	printlnFn(formatJob(*job))
	return nil
}

// List prints one page of jobs. Arguments are an optional status and an
// optional page number in any order.
func (a *App) List(ctx context.Context, args []string) error {
	f := services.JobFilter{Page: 1}
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			f.Page = n
			continue
		}
		f.Status = models.JobStatus(arg)
	}

	page, err := a.jobs.List(ctx, f)
	if err != nil {
		return a.report(err)
	}
	if len(page.Jobs) == 0 {
		printlnFn("No jobs")
		return nil
	}
	printlnFn(jobTableHeader())
	for _, j := range page.Jobs {
		printlnFn(formatJobRow(j))
	}
	printlnFn(fmt.Sprintf("page %d of %d (%d jobs)", page.Page, page.TotalPages, page.Total))
	return nil
}

// Show prints a job and the actions its status allows.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.jobID(args)
	if err != nil {
		return a.report(err)
	}
	job, err := a.jobs.Get(ctx, id)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatJob(*job))
	return nil
}

// Wait polls the job until it completes or fails. Ctrl-C stops waiting and
// prints the last status seen, if any.
func (a *App) Wait(ctx context.Context, args []string) error {
	id, err := a.jobID(args)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Waiting for job", id, "(Ctrl-C to stop waiting)")
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	job, err := a.jobs.Wait(ctx, id, waitInterval)
	if errors.Is(err, context.Canceled) {
		if job != nil {
			printlnFn("Stopped waiting; job is", job.Status)
		} else {
			printlnFn("Stopped waiting")
		}
		return nil
	}
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatJob(*job))
	return nil
}

// Delete fetches the current snapshot and deletes the job if its status
// allows it. The server remains the final arbiter.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.jobID(args)
	if err != nil {
		return a.report(err)
	}
	job, err := a.jobs.Get(ctx, id)
	if err != nil {
		return a.report(err)
	}
	if !models.CanDelete(job.Status) {
		printlnFn(fmt.Sprintf("Job %d is %s and cannot be deleted", job.ID, job.Status))
		return fmt.Errorf("%w: job %d is %s", client.ErrConflict, job.ID, job.Status)
	}
	if err := a.jobs.Delete(ctx, *job); err != nil {
		return a.report(err)
	}
	printlnFn("Job", id, "deleted")
	return nil
}

// Stats prints the server statistics followed by per-status counts.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.stats.UserStats(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatStats(*st))

	sum, err := a.stats.Summary(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatSummary(sum))
	return nil
}

// Dashboard prints the chart data as text: counts by status and type, then
// one bar per day.
func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.stats.Dashboard(ctx)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatDashboard(*d))
	return nil
}

func (a *App) jobID(args []string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Enter job id", a.out)
		if err != nil {
			return 0, err
		}
		raw = v
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid job id %q", client.ErrValidation, raw)
	}
	return id, nil
}
