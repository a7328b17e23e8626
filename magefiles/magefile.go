//go:build mage

// Package main provides build targets for the tracker project using Mage.
//
// Usage:
//
//	mage build       Compile the tracker binary to bin/
//	mage test:all    Run every test
//	mage test:unit   Run tests with -short (skips the SQLite round trips)
//	mage test:cover  Run every test and write coverage.out
//	mage lint        Run golangci-lint
//	mage install     Install tracker to GOPATH/bin
//	mage clean       Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "tracker"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tracker"
	coverFile  = "coverage.out"
)

// Build compiles the tracker binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test groups the test targets.
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Unit runs the fast tests only.
func (Test) Unit() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// Cover runs every test with coverage and prints the per-function summary.
func (Test) Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverFile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := sh.Rm(coverFile); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}
