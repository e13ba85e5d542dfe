// Package logging implements termsim.Logger.
//
//   - ConsoleLogger writes plain lines, "[VERBOSE] " and "[ERROR] " prefixed.
//   - ZapLogger writes structured entries through go.uber.org/zap.
//   - NullLogger discards everything.
//
// All implementations are safe for concurrent use.
package logging
