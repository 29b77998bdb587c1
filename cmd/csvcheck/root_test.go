package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/recipientcsv/internal/core"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck_ValidFile(t *testing.T) {
	path := writeFile(t, "ok.csv", "phone number,name\n07723456789,Ann\n07723456788,Bob\n")

	out, err := runCmd(t, "", "--content", "Hello ((name))", path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"Rows:", "Valid:", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestCheck_ProblemsExitCode(t *testing.T) {
	out, err := runCmd(t, "phone number\nnot a number\n", "--content", "hi")
	if !errors.Is(err, errBatchHasProblems) {
		t.Fatalf("Execute() error = %v, want errBatchHasProblems", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode = %d, want 2", exitCode(err))
	}
	if !strings.Contains(out, "phone.UNKNOWN_CHARACTER") {
		t.Errorf("output should list the problem kind:\n%s", out)
	}
}

func TestCheck_JSON(t *testing.T) {
	tmpl := writeFile(t, "letter.txt", "Dear ((name))")
	table := "name,address line 1,address line 2,postcode\nAnn,1 High Street,Town,SW1A1AA\n"

	out, err := runCmd(t, table, "-c", "letter", "--subject", "Hi", "-t", tmpl, "-o", "json", "-")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var s struct {
		Channel   core.Channel `json:"channel"`
		ValidRows int          `json:"valid_rows"`
		Complete  bool         `json:"complete"`
	}
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("output is not a summary: %v\n%s", err, out)
	}
	if s.Channel != core.ChannelLetter || s.ValidRows != 1 || !s.Complete {
		t.Errorf("summary = %+v", s)
	}
}

func TestCheck_AllowFlag(t *testing.T) {
	table := "email address\nann@example.com\nbob@example.com\n"
	_, err := runCmd(t, table, "-c", "email", "--subject", "s", "--content", "c", "--allow", "ANN@example.com")
	if !errors.Is(err, errBatchHasProblems) {
		t.Errorf("Execute() error = %v, want errBatchHasProblems", err)
	}

	_, err = runCmd(t, table, "-c", "email", "--subject", "s", "--content", "c",
		"--allow", "ann@example.com", "--allow", "bob@example.com")
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestCheck_PolicyFlags(t *testing.T) {
	table := "phone number\n+12025550104\n"
	if _, err := runCmd(t, table, "--content", "hi"); !errors.Is(err, errBatchHasProblems) {
		t.Errorf("international number should be rejected by default, got %v", err)
	}
	if _, err := runCmd(t, table, "--content", "hi", "--allow-international-sms"); err != nil {
		t.Errorf("Execute() with --allow-international-sms error = %v", err)
	}
}

func TestCheck_RepeatedColumns(t *testing.T) {
	out, err := runCmd(t, "phone number,name,Name\n07723456789,Ann,Lee\n", "--content", "Hello ((name))")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Repeated columns:") || !strings.Contains(out, "name") {
		t.Errorf("output should list the repeated column:\n%s", out)
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown channel", []string{"-c", "fax", "-"}},
		{"unknown format", []string{"-o", "xml", "-"}},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.csv")}},
		{"missing template", []string{"-t", filepath.Join(t.TempDir(), "nope.txt"), "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, "phone number\n07723456789\n", tt.args...)
			if err == nil {
				t.Fatal("Execute() expected error")
			}
			if exitCode(err) != 1 {
				t.Errorf("exitCode = %d, want 1", exitCode(err))
			}
		})
	}
}

func TestCheck_EmptyInput(t *testing.T) {
	_, err := runCmd(t, "", "-")
	if err == nil || !strings.Contains(err.Error(), "FILE003") {
		t.Errorf("Execute() error = %v, want FILE003", err)
	}
}

func TestKinds(t *testing.T) {
	out, err := runCmd(t, "", "kinds")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"KIND", "phone.TOO_SHORT", "address.NO_FIXED_ABODE", "PRC001"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output should contain %q", want)
		}
	}
}
