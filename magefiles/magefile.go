//go:build mage

// Package main provides build targets for the dbc project using Mage.
//
// Usage:
//
//	mage build      Compile dbc binary to bin/
//	mage test       Run all tests
//	mage race       Run all tests with the race detector
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install dbc to GOPATH/bin
//	mage inspect    Print the contract tables of the sample manifest
//	mage stats      Print Go LOC per top-level directory
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "dbc"
	binaryDir  = "bin"
	cmdDir     = "./cmd/dbc"

	sampleManifest = "internal/manifest/testdata/contracts.yaml"
)

// Build compiles the dbc binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector; the engine is called
// concurrently.
func Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Inspect builds dbc and prints the contract tables of the sample manifest.
func Inspect() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "inspect", sampleManifest)
}
