// Package logging builds the slog loggers used across captioner.
//
// The console handler renders compact single-line records for the terminal,
// lifting the component and session names out of the key/value tail. When a
// log directory is configured every record at debug and above is also
// appended as JSON to captioner.log, so a failed generation can be traced by
// its correlation id after the fact. WithContext attaches the session, stage,
// and correlation id carried on a context.Context.
package logging
