// Package coex holds the handlers behind each coex command. The cobra
// commands in /cmd parse nothing themselves; they hand their *cobra.Command
// straight to the functions here.
package coex

import (
	"log"
	"os"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)
