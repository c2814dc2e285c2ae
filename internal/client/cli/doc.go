// Package cli provides the interactive cracksmith command-line client.
//
// It is a thin consumer of the services package: every decision about
// session state or job action legality is delegated to it. Typical flow:
// resolve the stored session, start the background expiry watcher, then
// execute user commands until exit.
//
// Key features:
//   - Register / Login (with PIN challenge) / Logout / WhoAmI / SetPIN
//   - Submit hashes, list and page through jobs, show, wait for and delete jobs
//   - Statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartSessionWatcher, and runREPL for details.
package cli
