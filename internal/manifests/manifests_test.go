package manifests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/pkg/retry"
)

func TestExpand(t *testing.T) {
	vars := map[string]string{
		"DB_HOST":      "db.internal",
		"DB_NAME":      "appdb",
		"PROJECT_NAME": "secrets-demo",
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "braced placeholders",
			src:  "host: ${DB_HOST}\nname: ${DB_NAME}",
			want: "host: db.internal\nname: appdb",
		},
		{
			name: "bare placeholders",
			src:  "project: $PROJECT_NAME",
			want: "project: secrets-demo",
		},
		{
			name: "unset variable becomes empty string",
			src:  "role: ${PARAMETER_STORE_ROLE_ARN}!",
			want: "role: !",
		},
		{
			name: "no placeholders",
			src:  "plain: text",
			want: "plain: text",
		},
		{
			name: "escaped dollar passes through",
			src:  "cmd: echo $$HOME",
			want: "cmd: echo $$HOME",
		},
		{
			name: "positional parameter passes through",
			src:  "arg: $1",
			want: "arg: $1",
		},
		{
			name: "shell special variables pass through",
			src:  "pid: $$ status: $?",
			want: "pid: $$ status: $?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.src, vars); got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvironFrom_ExplicitWins(t *testing.T) {
	t.Setenv("DB_HOST", "from-env")
	vars := EnvironFrom(map[string]string{"DB_HOST": "from-outputs"})
	if vars["DB_HOST"] != "from-outputs" {
		t.Errorf("DB_HOST = %q, want explicit value to win", vars["DB_HOST"])
	}
}

func writeScenarios(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for dir, files := range map[string]map[string]string{
		"02-secrets-manager": {
			"external-secret.yaml": "metadata:\n  name: sm-secret\nspec:\n  role: ${SECRETS_MANAGER_ROLE_ARN}\n",
		},
		"01-parameter-store": {
			"deployment.yaml": "image: ${ECR_REGISTRY}/demo:latest\n",
			"notes.txt":       "not a manifest",
		},
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(root, dir, name), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func TestScenarios_LexicalOrder(t *testing.T) {
	root := writeScenarios(t)
	dirs, err := Scenarios(root)
	if err != nil {
		t.Fatalf("Scenarios() = %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(dirs))
	}
	if filepath.Base(dirs[0]) != "01-parameter-store" || filepath.Base(dirs[1]) != "02-secrets-manager" {
		t.Errorf("scenarios out of order: %v", dirs)
	}
}

func TestDeployAll_SubstitutesAndApplies(t *testing.T) {
	root := writeScenarios(t)
	fake := cmdexec.NewFake()
	d := NewDeployer(fake, "/tmp/kubeconfig.yaml")

	vars := map[string]string{
		"ECR_REGISTRY":             "123456789012.dkr.ecr.us-west-2.amazonaws.com",
		"SECRETS_MANAGER_ROLE_ARN": "arn:aws:iam::123456789012:role/sm-reader",
	}
	if err := d.DeployAll(context.Background(), root, vars); err != nil {
		t.Fatalf("DeployAll() = %v", err)
	}

	// one apply per manifest, skipping the .txt file, in lexical order
	if len(fake.Commands) != 2 {
		t.Fatalf("recorded %d applies, want 2", len(fake.Commands))
	}
	if !strings.Contains(fake.StdinData[0], "123456789012.dkr.ecr.us-west-2.amazonaws.com/demo:latest") {
		t.Errorf("first apply not substituted: %q", fake.StdinData[0])
	}
	if !strings.Contains(fake.StdinData[1], "arn:aws:iam::123456789012:role/sm-reader") {
		t.Errorf("second apply not substituted: %q", fake.StdinData[1])
	}
	for _, cmd := range fake.Commands {
		if cmd.Name != "kubectl" {
			t.Errorf("Name = %q, want kubectl", cmd.Name)
		}
	}
}

func TestDeployAll_UnsetVariableSubstitutesEmpty(t *testing.T) {
	root := writeScenarios(t)
	fake := cmdexec.NewFake()
	d := NewDeployer(fake, "")

	if err := d.DeployAll(context.Background(), root, map[string]string{}); err != nil {
		t.Fatalf("DeployAll() = %v", err)
	}
	if !strings.Contains(fake.StdinData[0], "image: /demo:latest") {
		t.Errorf("unset variable should substitute to empty string, got %q", fake.StdinData[0])
	}
}

func TestApply_RetriesTransientFailures(t *testing.T) {
	failing := cmdexec.NewFake()
	failing.RunErrs["kubectl"] = errors.New("forbidden: role not yet propagated")

	dep := &Deployer{
		exec: failing,
		retryCfg: retry.Config{
			MaxRetries:   2,
			InitialDelay: 1,
			MaxDelay:     1,
			Multiplier:   1,
		},
	}
	err := dep.apply(context.Background(), "deployment.yaml", "kind: Deployment")
	if err == nil {
		t.Fatal("apply() = nil, want error after exhausted retries")
	}
	if len(failing.Commands) != 3 {
		t.Errorf("recorded %d attempts, want 3 (initial + 2 retries)", len(failing.Commands))
	}
}
