// Package txlog provides the package-level structured logger used by the
// transaction engine for diagnostics that aren't gate failures: dust
// change folded into fee, and a debug line for each parsed transaction.
// Signature invalidation and ZCE checks are not logged. Consumers who
// don't care can ignore it entirely; the default is a null logger so the engine costs nothing until a caller
// opts in with SetLogger.
package txlog

import "github.com/hashicorp/go-hclog"

var logger hclog.Logger = hclog.NewNullLogger()

// SetLogger replaces the package-level logger. Passing nil restores the
// null logger.
func SetLogger(l hclog.Logger) {
	if l == nil {
		logger = hclog.NewNullLogger()
		return
	}
	logger = l
}

// L returns the current logger, named for the transaction engine.
func L() hclog.Logger {
	return logger.Named("tx")
}
