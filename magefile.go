//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/tabledoc"
	binPath    = "./bin/tabledoc"
)

// Default target - build the binary
var Default = Build

// Build builds the tabledoc binary with version information.
func Build() error {
	if err := os.MkdirAll("bin", 0o750); err != nil {
		return err
	}
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitOutput("dev", "describe", "--tags", "--always", "--dirty", "--match=v*"),
		gitOutput("unknown", "rev-parse", "--short", "HEAD"), time.Now().UTC().Format(time.RFC3339))
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/tabledoc")
}

// Clean removes build artifacts and generated sample documents.
func Clean() error {
	for _, p := range []string{"bin", "coverage.out", "build/docs"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// Sample renders the bundled sample spool in both formats into build/docs.
func Sample() error {
	mg.Deps(Build)
	for _, format := range []string{"markdown", "asciidoc"} {
		if err := sh.RunV(binPath, "generate",
			"--input-dir", "testdata/spool",
			"--output-dir", "build/docs/"+format,
			"--format", format,
			"--expectation-pattern", `.*\?$`,
		); err != nil {
			return err
		}
	}
	return nil
}

// QA runs formatting, vet, lint and the race-enabled tests.
func QA() {
	mg.SerialDeps(Lint.All, Test.Race)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs every linter that is installed.
func (Lint) All() {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Golangci)
}

// Format fails when gofmt would change a file.
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint when it is installed.
func (Lint) Golangci() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println("golangci-lint not found (install: go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest)")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Coverage runs tests with coverage and prints the per-function report.
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

func gitOutput(fallback string, args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil || out == "" {
		return fallback
	}
	return strings.TrimSpace(out)
}
