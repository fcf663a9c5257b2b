// Package status builds a read-only report of one environment
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/fatih/color"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/chalkan3/sloth-secrets/internal/helm"
	"github.com/chalkan3/sloth-secrets/internal/terraform"
)

// Report is the full environment status for table/json/yaml rendering
type Report struct {
	Environment string            `json:"environment" yaml:"environment"`
	Project     string            `json:"project" yaml:"project"`
	Region      string            `json:"region" yaml:"region"`
	GeneratedAt time.Time         `json:"generatedAt" yaml:"generatedAt"`
	StateFound  bool              `json:"stateFound" yaml:"stateFound"`
	Outputs     map[string]string `json:"outputs" yaml:"outputs"`
	VPC         *VPCStatus        `json:"vpc,omitempty" yaml:"vpc,omitempty"`
	Releases    []ReleaseStatus   `json:"releases" yaml:"releases"`
	Workloads   []WorkloadStatus  `json:"workloads" yaml:"workloads"`
}

// VPCStatus is the live VPC state read from the EC2 API
type VPCStatus struct {
	ID    string `json:"id" yaml:"id"`
	State string `json:"state" yaml:"state"`
	CIDR  string `json:"cidr" yaml:"cidr"`
}

// ReleaseStatus is one installed helm release
type ReleaseStatus struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Status    string `json:"status" yaml:"status"`
	Chart     string `json:"chart" yaml:"chart"`
}

// WorkloadStatus is one demo deployment's readiness
type WorkloadStatus struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
	Ready     string `json:"ready" yaml:"ready"`
}

// DescribeVpcsAPI is the slice of the EC2 client the report uses
type DescribeVpcsAPI interface {
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
}

// Builder assembles a Report from Terraform state, AWS, helm, and the
// cluster. Every collaborator is optional; a missing one leaves its section
// empty. Failures downgrade to warnings so status never aborts.
type Builder struct {
	Environment string
	Project     string
	Region      string

	TF   *terraform.Runner
	EC2  DescribeVpcsAPI
	Helm *helm.Client
	K8s  kubernetes.Interface

	// Namespaces to scan for demo workloads
	Namespaces []string
}

// Build assembles the report. It never returns an error for absent
// infrastructure: an environment with no Terraform state yields an empty
// report with StateFound false.
func (b *Builder) Build(ctx context.Context) *Report {
	report := &Report{
		Environment: b.Environment,
		Project:     b.Project,
		Region:      b.Region,
		GeneratedAt: time.Now(),
		Outputs:     map[string]string{},
		Releases:    []ReleaseStatus{},
		Workloads:   []WorkloadStatus{},
	}

	outputs := b.collectOutputs(ctx, report)
	if !report.StateFound {
		// Nothing provisioned; do not touch the cluster or cloud APIs
		return report
	}

	b.collectVPC(ctx, report, outputs)
	b.collectReleases(ctx, report)
	b.collectWorkloads(ctx, report)
	return report
}

func (b *Builder) collectOutputs(ctx context.Context, report *Report) terraform.Outputs {
	if b.TF == nil {
		return terraform.Outputs{}
	}
	outputs, err := b.TF.Outputs(ctx)
	if err != nil {
		color.Yellow("no terraform state found: %v", err)
		return terraform.Outputs{}
	}
	report.Outputs = outputs.Strings()
	report.StateFound = len(outputs) > 0
	return outputs
}

func (b *Builder) collectVPC(ctx context.Context, report *Report, outputs terraform.Outputs) {
	if b.EC2 == nil {
		return
	}
	vpcID, ok := outputs.String("vpc_id")
	if !ok {
		return
	}
	out, err := b.EC2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		color.Yellow("failed to describe VPC %s: %v", vpcID, err)
		return
	}
	if len(out.Vpcs) == 0 {
		return
	}
	vpc := out.Vpcs[0]
	status := &VPCStatus{ID: vpcID}
	status.State = string(vpc.State)
	if vpc.CidrBlock != nil {
		status.CIDR = *vpc.CidrBlock
	}
	report.VPC = status
}

func (b *Builder) collectReleases(ctx context.Context, report *Report) {
	if b.Helm == nil {
		return
	}
	releases, err := b.Helm.List(ctx)
	if err != nil {
		color.Yellow("failed to list helm releases: %v", err)
		return
	}
	for _, rel := range releases {
		report.Releases = append(report.Releases, ReleaseStatus{
			Name:      rel.Name,
			Namespace: rel.Namespace,
			Status:    rel.Status,
			Chart:     rel.Chart,
		})
	}
}

func (b *Builder) collectWorkloads(ctx context.Context, report *Report) {
	if b.K8s == nil {
		return
	}
	for _, ns := range b.Namespaces {
		deployments, err := b.K8s.AppsV1().Deployments(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			color.Yellow("failed to list deployments in %s: %v", ns, err)
			continue
		}
		for _, dep := range deployments.Items {
			report.Workloads = append(report.Workloads, WorkloadStatus{
				Namespace: ns,
				Name:      dep.Name,
				Ready:     readyString(dep),
			})
		}
	}
}

func readyString(dep appsv1.Deployment) string {
	want := int32(1)
	if dep.Spec.Replicas != nil {
		want = *dep.Spec.Replicas
	}
	return fmt.Sprintf("%d/%d", dep.Status.ReadyReplicas, want)
}
