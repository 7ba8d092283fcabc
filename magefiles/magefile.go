//go:build mage

// Package main contains Mage build targets for litreview developer tooling.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// projectDirs lists the store directories the pipeline expects.
var projectDirs = []string{
	"papers_internal/pdfs",
	"papers_internal/metadata",
	"papers_external/pdfs",
	"papers_external/metadata",
}

const (
	binDir  = "bin"
	binName = "litreview"
	cmdPkg  = "./cmd/litreview"
)

// Init creates the store directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Store directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	return run("go", "build", "-o", out, cmdPkg)
}

// Test runs the full test suite.
func Test() error {
	return run("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return run("go", "vet", "./...")
}

// All vets, tests, and builds.
func All() error {
	mg.SerialDeps(Vet, Test, Build)
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}
