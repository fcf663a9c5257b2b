package cmdexec

import (
	"context"
	"fmt"
	"io"
)

// Fake records commands instead of executing them. Used by tests.
type Fake struct {
	Commands []Command
	// StdinData holds what was piped to each recorded command, by index
	StdinData []string
	// RunErr, when set, is returned by every Run call
	RunErr error
	// RunErrs maps a binary name to the error its Run calls return
	RunErrs map[string]error
	// Outputs maps a binary name to the bytes its Output calls return
	Outputs map[string][]byte
	// OutputErrs maps a binary name to the error its Output calls return
	OutputErrs map[string]error
}

// NewFake returns an empty Fake runner
func NewFake() *Fake {
	return &Fake{
		RunErrs:    map[string]error{},
		Outputs:    map[string][]byte{},
		OutputErrs: map[string]error{},
	}
}

func (f *Fake) record(c Command) {
	var stdin string
	if c.Stdin != nil {
		data, _ := io.ReadAll(c.Stdin)
		stdin = string(data)
		c.Stdin = nil
	}
	f.Commands = append(f.Commands, c)
	f.StdinData = append(f.StdinData, stdin)
}

func (f *Fake) Run(ctx context.Context, c Command) error {
	f.record(c)
	if err, ok := f.RunErrs[c.Name]; ok {
		return err
	}
	return f.RunErr
}

func (f *Fake) Output(ctx context.Context, c Command) ([]byte, error) {
	f.record(c)
	if err, ok := f.OutputErrs[c.Name]; ok {
		return nil, err
	}
	if out, ok := f.Outputs[c.Name]; ok {
		return out, nil
	}
	return nil, fmt.Errorf("no fake output registered for %s", c.Name)
}

// CalledWith reports whether any recorded command used the given binary
func (f *Fake) CalledWith(name string) bool {
	for _, c := range f.Commands {
		if c.Name == name {
			return true
		}
	}
	return false
}
