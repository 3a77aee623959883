package config

import (
	"bytes"
	"log"
	"testing"
)

func TestExitfWritesPrefixedMessageAndExits(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	prevWriter, prevExit, prevPrefix := exitWriter, exit, log.Prefix()
	t.Cleanup(func() {
		exitWriter, exit = prevWriter, prevExit
		log.SetPrefix(prevPrefix)
	})
	exitWriter = &buf
	exit = func(c int) { code = c }
	log.SetPrefix("[CREWLEDGER] ")

	Exitf("Error: %s", "store unavailable")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got, want := buf.String(), "[CREWLEDGER] Error: store unavailable\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
