package config

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	exitWriter io.Writer = os.Stderr
	exit                 = os.Exit
)

// Exitf writes a formatted message to stderr under the standard logger prefix
// and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(exitWriter, log.Prefix()+format+"\n", args...)
	exit(1)
}
