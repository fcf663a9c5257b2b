package helm

import (
	"context"
	"testing"

	"github.com/chalkan3/sloth-secrets/internal/cmdexec"
	"github.com/chalkan3/sloth-secrets/pkg/config"
)

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestRepoAdd(t *testing.T) {
	fake := cmdexec.NewFake()
	c := New(fake, "")

	if err := c.RepoAdd(context.Background(), "external-secrets", "https://charts.external-secrets.io"); err != nil {
		t.Fatalf("RepoAdd() = %v", err)
	}

	args := fake.Commands[0].Args
	for _, want := range []string{"repo", "add", "external-secrets", "https://charts.external-secrets.io", "--force-update"} {
		if !hasArg(args, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
}

func TestUpgradeInstall_Args(t *testing.T) {
	fake := cmdexec.NewFake()
	c := New(fake, "/home/user/.kube/sloth-secrets/dev.yaml")

	chart := config.ChartConfig{
		Release:   "vault",
		Chart:     "hashicorp/vault",
		Namespace: "vault",
		Timeout:   "5m0s",
	}
	if err := c.UpgradeInstall(context.Background(), chart); err != nil {
		t.Fatalf("UpgradeInstall() = %v", err)
	}

	args := fake.Commands[0].Args
	for _, want := range []string{
		"upgrade", "--install", "vault", "hashicorp/vault",
		"--namespace", "--create-namespace", "--wait",
		"--timeout", "5m0s",
		"--kubeconfig", "/home/user/.kube/sloth-secrets/dev.yaml",
	} {
		if !hasArg(args, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
}

func TestUpgradeInstall_NoTimeoutUsesHelmDefault(t *testing.T) {
	fake := cmdexec.NewFake()
	c := New(fake, "")

	chart := config.ChartConfig{Release: "eso", Chart: "external-secrets/external-secrets", Namespace: "external-secrets"}
	if err := c.UpgradeInstall(context.Background(), chart); err != nil {
		t.Fatalf("UpgradeInstall() = %v", err)
	}
	if hasArg(fake.Commands[0].Args, "--timeout") {
		t.Errorf("no timeout configured, helm default should apply: %v", fake.Commands[0].Args)
	}
}

func TestUpgradeInstall_InlineValues(t *testing.T) {
	fake := cmdexec.NewFake()
	c := New(fake, "")

	chart := config.ChartConfig{
		Release:   "csi",
		Chart:     "secrets-store-csi-driver/secrets-store-csi-driver",
		Namespace: "kube-system",
		Values: map[string]any{
			"syncSecret": map[string]any{"enabled": true},
		},
	}
	if err := c.UpgradeInstall(context.Background(), chart); err != nil {
		t.Fatalf("UpgradeInstall() = %v", err)
	}

	if !hasArg(fake.Commands[0].Args, "-f") {
		t.Errorf("inline values should be passed via -f, got %v", fake.Commands[0].Args)
	}
}

func TestList_ParsesReleases(t *testing.T) {
	fake := cmdexec.NewFake()
	fake.Outputs["helm"] = []byte(`[
		{"name":"external-secrets","namespace":"external-secrets","revision":"2","status":"deployed","chart":"external-secrets-0.9.11","app_version":"v0.9.11"},
		{"name":"vault","namespace":"vault","revision":"1","status":"deployed","chart":"vault-0.27.0","app_version":"1.15.2"}
	]`)
	c := New(fake, "")

	releases, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("got %d releases, want 2", len(releases))
	}
	if releases[0].Name != "external-secrets" || releases[0].Status != "deployed" {
		t.Errorf("unexpected release %+v", releases[0])
	}
}
