// Package cmdexec runs external tool binaries with consistent progress output
package cmdexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Command describes one external tool invocation
type Command struct {
	Name        string
	Args        []string
	Dir         string
	Env         []string // appended to os.Environ()
	Stdin       io.Reader
	Description string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external commands. The concrete implementation shells out;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, c Command) error
	Output(ctx context.Context, c Command) ([]byte, error)
}

// Exec is the real Runner backed by os/exec
type Exec struct {
	Verbose bool
}

// New returns a Runner that shells out to the named binaries
func New(verbose bool) *Exec {
	return &Exec{Verbose: verbose}
}

// LookPath reports whether the named binary is available
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (e *Exec) build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = c.Stdin
	return cmd
}

// Run executes the command, streaming output in verbose mode and showing a
// spinner otherwise. Captured stderr is folded into the returned error.
func (e *Exec) Run(ctx context.Context, c Command) error {
	cmd := e.build(ctx, c)

	if e.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		color.HiBlack("Running: %s", c)
		return cmd.Run()
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if c.Description != "" {
		s.Suffix = " " + c.Description
	} else {
		s.Suffix = " " + c.Name
	}
	s.Start()
	err := cmd.Run()
	s.Stop()

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", c.Name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return nil
}

// Output executes the command and returns its stdout
func (e *Exec) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := e.build(ctx, c)

	if e.Verbose {
		color.HiBlack("Running: %s", c)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, fmt.Errorf("%s failed: %w: %s", c.Name, err, msg)
		}
		return out, fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return out, nil
}
