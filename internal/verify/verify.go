// Package verify polls the demo workloads and reports which secrets reached
// them
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/chalkan3/sloth-secrets/pkg/retry"
)

// DefaultTimeout matches the fixed wait the shell tooling used
const DefaultTimeout = 120 * time.Second

// DefaultInterval is the polling cadence
const DefaultInterval = 5 * time.Second

// Verifier performs read-only checks against the cluster
type Verifier struct {
	client   kubernetes.Interface
	interval time.Duration
	timeout  time.Duration
}

// New creates a Verifier from a kubeconfig path
func New(kubeconfigPath string) (*Verifier, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfigPath, err)
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient creates a Verifier around an existing clientset. Tests pass
// the fake clientset here.
func NewWithClient(client kubernetes.Interface) *Verifier {
	return &Verifier{
		client:   client,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
	}
}

// WithTimeout returns a copy of the Verifier using the given deadline for
// readiness waits
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	copied := *v
	copied.timeout = timeout
	return &copied
}

// Clientset exposes the underlying kubernetes client for callers that share
// the connection
func (v *Verifier) Clientset() kubernetes.Interface {
	return v.client
}

// errNotReady marks a poll attempt that should be retried
var errNotReady = errors.New("deployment not ready")

// WaitDeploymentReady polls until the deployment reports at least one ready
// replica or the timeout elapses. A timeout is returned as an error; callers
// downgrade it to a warning.
func (v *Verifier) WaitDeploymentReady(ctx context.Context, namespace, name string) error {
	attempts := int(v.timeout / v.interval)
	if attempts < 0 {
		attempts = 0
	}
	cfg := retry.Config{
		MaxRetries:   attempts,
		InitialDelay: v.interval,
		MaxDelay:     v.interval,
		Multiplier:   1.0,
		RetryIf: func(err error) bool {
			return errors.Is(err, errNotReady)
		},
	}

	err := retry.New(cfg).DoWithContext(ctx, func() error {
		dep, err := v.client.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return errNotReady
		}
		if err != nil {
			return fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
		}
		if dep.Status.ReadyReplicas == 0 {
			return errNotReady
		}
		return nil
	})
	if errors.Is(err, errNotReady) {
		return fmt.Errorf("deployment %s/%s not ready within %s", namespace, name, v.timeout)
	}
	return err
}

// SecretExists reports whether the named Secret object exists
func (v *Verifier) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := v.client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// PrintPodLogs writes the log tails of pods matching the label selector
func (v *Verifier) PrintPodLogs(ctx context.Context, out io.Writer, namespace, selector string, tailLines int64) error {
	pods, err := v.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	for _, pod := range pods.Items {
		fmt.Fprintf(out, "--- %s/%s ---\n", namespace, pod.Name)
		req := v.client.CoreV1().Pods(namespace).GetLogs(pod.Name, &corev1.PodLogOptions{
			TailLines: &tailLines,
		})
		stream, err := req.Stream(ctx)
		if err != nil {
			fmt.Fprintf(out, "(logs unavailable: %v)\n", err)
			continue
		}
		_, copyErr := io.Copy(out, stream)
		stream.Close()
		if copyErr != nil {
			return fmt.Errorf("failed to stream logs for %s/%s: %w", namespace, pod.Name, copyErr)
		}
	}
	return nil
}
