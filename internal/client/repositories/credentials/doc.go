// Package credentials persists the session's token pair and the install's
// device id in the local SQLite database.
//
// Only the session service writes the token pair. The key/value Repository
// works against any dbx.DBTX so writes can be grouped in one transaction;
// Store is the higher level API the services consume.
package credentials
