package logger

import (
	"log"
	"os"
)

// ProgressLogger logs the main steps of the document lifecycle
// (parsing, layout passes, resource convergence).
var ProgressLogger = log.New(os.Stdout, "litebridge.progress: ", log.LstdFlags)

// WarningLogger emits a warning for each non fatal error, like unsupported CSS
// properties, undecodable images, or a misuse of the document lifecycle.
var WarningLogger = log.New(os.Stdout, "litebridge.warning: ", log.Lmsgprefix)
