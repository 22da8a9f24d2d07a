package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	t.Parallel()

	got, err := parseSince("2024-03-05")
	if err != nil || !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parseSince = %v, %v", got, err)
	}
	if got, err := parseSince(""); err != nil || !got.IsZero() {
		t.Errorf("parseSince(\"\") = %v, %v", got, err)
	}
	if _, err := parseSince("05/03/2024"); err == nil {
		t.Error("parseSince accepted a non ISO date")
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	for in, ok := range map[string]bool{"993": true, " 143 ": true, "": false, "imap": false, "70000": false} {
		if err := validatePort(in); (err == nil) != ok {
			t.Errorf("validatePort(%q) = %v", in, err)
		}
	}
}

func TestContactsImportAndStats(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	configPath := filepath.Join(dir, "config.yaml")
	config := "paths:\n  output_dir: out\n  contacts_file: out/contacts.json\nlog:\n  level: error\n  pretty: false\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	csv := "First Name,Last Name,Organization Name,E-mail 1 - Value\nAnn,Lee,Acme,ann@example.com\n"
	csvPath := filepath.Join(dir, "contacts.csv")
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--config", configPath}, args...))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	if out := run("contacts", "import", csvPath); !strings.Contains(out, "+ ann@example.com") {
		t.Errorf("import output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "contacts.json")); err != nil {
		t.Errorf("contacts file not written: %v", err)
	}
	if out := run("contacts", "update", csvPath); !strings.Contains(out, "no changes") {
		t.Errorf("update output:\n%s", out)
	}
	if out := run("stats"); !strings.Contains(out, "Total emails:") {
		t.Errorf("stats output:\n%s", out)
	}
}
