// Package logger provides structured logging for the digest pipeline,
// built on zerolog.
//
// The Logger interface wraps zerolog so components can be tested with the
// in-memory TestLogger. Console output is pretty-printed; configuring a
// file target writes JSON lines to the file alongside the console.
//
// A global logger is available through Initialize and GetLogger for the
// places where threading a Logger through would be pure ceremony; every
// pipeline component still accepts an explicit Logger at construction.
package logger
