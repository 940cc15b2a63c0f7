package yamlutil

import (
	"flag"
	"testing"
)

func TestSetFlagsFromYamlAppliesUnsetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loglevel := fs.String("loglevel", "INFO", "")
	queueCap := fs.String("queue-capacity", "16", "")

	raw := []byte("LOGLEVEL: DEBUG\nQUEUE_CAPACITY: \"32\"\n")
	if err := SetFlagsFromYaml(fs, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *loglevel != "DEBUG" {
		t.Errorf("loglevel = %q, want DEBUG", *loglevel)
	}
	if *queueCap != "32" {
		t.Errorf("queue-capacity = %q, want 32", *queueCap)
	}
}

func TestSetFlagsFromYamlSkipsAlreadySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loglevel := fs.String("loglevel", "INFO", "")
	if err := fs.Set("loglevel", "ERROR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := []byte("LOGLEVEL: DEBUG\n")
	if err := SetFlagsFromYaml(fs, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *loglevel != "ERROR" {
		t.Errorf("loglevel = %q, want ERROR (command-line value must win)", *loglevel)
	}
}

func TestSetFlagsFromYamlInvalidValue(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("queue-capacity", 16, "")

	raw := []byte("QUEUE_CAPACITY: not-a-number\n")
	if err := SetFlagsFromYaml(fs, raw); err == nil {
		t.Error("expected error for non-numeric value applied to an int flag")
	}
}
