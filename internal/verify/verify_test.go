package verify

import (
	"context"
	"testing"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func fastVerifier(client *fake.Clientset) *Verifier {
	v := NewWithClient(client)
	v.interval = time.Millisecond
	v.timeout = 20 * time.Millisecond
	return v
}

func TestWaitDeploymentReady_Ready(t *testing.T) {
	client := fake.NewSimpleClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "secrets-demo", Namespace: "default"},
		Status:     appsv1.DeploymentStatus{ReadyReplicas: 1},
	})

	v := fastVerifier(client)
	if err := v.WaitDeploymentReady(context.Background(), "default", "secrets-demo"); err != nil {
		t.Errorf("WaitDeploymentReady() = %v, want nil", err)
	}
}

func TestWaitDeploymentReady_TimesOut(t *testing.T) {
	client := fake.NewSimpleClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "secrets-demo", Namespace: "default"},
		Status:     appsv1.DeploymentStatus{ReadyReplicas: 0},
	})

	v := fastVerifier(client)
	err := v.WaitDeploymentReady(context.Background(), "default", "secrets-demo")
	if err == nil {
		t.Fatal("WaitDeploymentReady() = nil, want timeout error")
	}
}

func TestWaitDeploymentReady_MissingDeploymentTimesOut(t *testing.T) {
	v := fastVerifier(fake.NewSimpleClientset())

	err := v.WaitDeploymentReady(context.Background(), "default", "absent")
	if err == nil {
		t.Fatal("WaitDeploymentReady() = nil, want timeout error for missing deployment")
	}
}

func TestSecretExists(t *testing.T) {
	client := fake.NewSimpleClientset(&corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "db-credentials", Namespace: "default"},
	})
	v := NewWithClient(client)

	exists, err := v.SecretExists(context.Background(), "default", "db-credentials")
	if err != nil || !exists {
		t.Errorf("SecretExists(existing) = %v, %v; want true, nil", exists, err)
	}

	exists, err = v.SecretExists(context.Background(), "default", "missing")
	if err != nil || exists {
		t.Errorf("SecretExists(missing) = %v, %v; want false, nil", exists, err)
	}
}
