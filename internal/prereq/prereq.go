// Package prereq verifies required tools and cloud credentials before a run
package prereq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
)

// RequiredTools are the binaries every deployment action shells out to
var RequiredTools = []string{"terraform", "kubectl", "helm", "aws"}

// CallerIdentityAPI is the slice of the STS client used for credential checks
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity describes the AWS principal the run executes as
type Identity struct {
	AccountID string
	ARN       string
}

// ECRRegistry derives the account's default ECR registry hostname
func (id Identity) ECRRegistry(region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", id.AccountID, region)
}

// Checker performs fail-fast prerequisite checks. No retries: a missing tool
// or bad credentials abort the whole run.
type Checker struct {
	sts CallerIdentityAPI

	// lookPath is swapped in tests
	lookPath func(string) (string, error)
}

// New creates a Checker backed by the real PATH and the given STS client
func New(stsClient CallerIdentityAPI, lookPath func(string) (string, error)) *Checker {
	return &Checker{
		sts:      stsClient,
		lookPath: lookPath,
	}
}

// CheckTools verifies every required binary is on PATH
func (c *Checker) CheckTools() error {
	var missing []string
	for _, tool := range RequiredTools {
		if _, err := c.lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %v", missing)
	}
	return nil
}

// CheckCredentials verifies AWS credentials by calling STS GetCallerIdentity
// and returns the resolved principal
func (c *Checker) CheckCredentials(ctx context.Context) (*Identity, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("AWS credentials are not valid: %w", err)
	}
	id := &Identity{}
	if out.Account != nil {
		id.AccountID = *out.Account
	}
	if out.Arn != nil {
		id.ARN = *out.Arn
	}
	return id, nil
}

// ToolVersions reports the version of each required binary, best effort.
// A tool that fails to report is listed as "unknown".
func ToolVersions(ctx context.Context, runner cmdexec.Runner) map[string]string {
	versions := make(map[string]string, len(RequiredTools))
	for _, tool := range RequiredTools {
		versions[tool] = toolVersion(ctx, runner, tool)
	}
	return versions
}

func toolVersion(ctx context.Context, runner cmdexec.Runner, tool string) string {
	switch tool {
	case "terraform":
		out, err := runner.Output(ctx, cmdexec.Command{Name: "terraform", Args: []string{"version", "-json"}})
		if err != nil {
			return "unknown"
		}
		var parsed struct {
			TerraformVersion string `json:"terraform_version"`
		}
		if json.Unmarshal(out, &parsed) != nil || parsed.TerraformVersion == "" {
			return "unknown"
		}
		return parsed.TerraformVersion
	case "helm":
		return firstLine(runner.Output(ctx, cmdexec.Command{Name: "helm", Args: []string{"version", "--short"}}))
	case "kubectl":
		return firstLine(runner.Output(ctx, cmdexec.Command{Name: "kubectl", Args: []string{"version", "--client"}}))
	case "aws":
		return firstLine(runner.Output(ctx, cmdexec.Command{Name: "aws", Args: []string{"--version"}}))
	}
	return "unknown"
}

func firstLine(out []byte, err error) string {
	if err != nil {
		return "unknown"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "unknown"
	}
	return line
}

// Check runs tool and credential checks in order
func (c *Checker) Check(ctx context.Context) (*Identity, error) {
	if err := c.CheckTools(); err != nil {
		return nil, err
	}
	return c.CheckCredentials(ctx)
}
