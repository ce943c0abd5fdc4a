package kubebuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/fxdian/ungoogled-chromium/internal/config"
	"github.com/fxdian/ungoogled-chromium/internal/core/domain"
	output "github.com/fxdian/ungoogled-chromium/internal/core/ports/output"
)

var jobGVR = schema.GroupVersionResource{
	Group:    "batch",
	Version:  "v1",
	Resource: "jobs",
}

type remoteBuilder struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
	image     string
}

// NewRemoteBuilder creates the cluster build adapter
func NewRemoteBuilder(cfg *config.KubernetesConfig) (output.RemoteBuilder, error) {
	if !cfg.Enabled {
		return &remoteBuilder{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	defaultNS := cfg.Namespace
	if defaultNS == "" {
		defaultNS = "browser-builds"
	}

	return &remoteBuilder{
		client:    client,
		enabled:   true,
		defaultNS: defaultNS,
		image:     cfg.BuilderImage,
	}, nil
}

func (b *remoteBuilder) IsAvailable() bool {
	return b.enabled
}

func (b *remoteBuilder) Submit(ctx context.Context, build *domain.Build) (string, error) {
	if !b.enabled {
		return "", domain.ErrRemoteBuilderUnavailable
	}

	obj := b.buildJobCR(build)
	created, err := b.client.Resource(jobGVR).
		Namespace(b.defaultNS).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("create build job: %w", err)
	}
	return created.GetName(), nil
}

func (b *remoteBuilder) Status(ctx context.Context, build *domain.Build) (*output.RemoteBuildStatus, error) {
	if !b.enabled {
		return nil, domain.ErrRemoteBuilderUnavailable
	}

	obj, err := b.client.Resource(jobGVR).
		Namespace(b.defaultNS).
		Get(ctx, jobName(build), metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get build job: %w", err)
	}

	active, _, _ := unstructured.NestedInt64(obj.Object, "status", "active")
	succeeded, _, _ := unstructured.NestedInt64(obj.Object, "status", "succeeded")
	failed, _, _ := unstructured.NestedInt64(obj.Object, "status", "failed")

	status := &output.RemoteBuildStatus{
		Active:    active > 0,
		Succeeded: succeeded > 0,
		Failed:    failed > 0,
	}
	if conditions, found, _ := unstructured.NestedSlice(obj.Object, "status", "conditions"); found {
		for _, c := range conditions {
			cond, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if msg, ok := cond["message"].(string); ok && msg != "" {
				status.Message = msg
			}
		}
	}
	return status, nil
}

func (b *remoteBuilder) Cancel(ctx context.Context, build *domain.Build) error {
	if !b.enabled {
		return domain.ErrRemoteBuilderUnavailable
	}

	policy := metav1.DeletePropagationBackground
	err := b.client.Resource(jobGVR).
		Namespace(b.defaultNS).
		Delete(ctx, jobName(build), metav1.DeleteOptions{PropagationPolicy: &policy})
	if err != nil {
		return fmt.Errorf("delete build job: %w", err)
	}
	return nil
}

// jobName is deterministic so that status and cancel calls need no stored
// external identifier.
func jobName(build *domain.Build) string {
	return fmt.Sprintf("chromium-build-%s", build.ID.String()[:8])
}

func (b *remoteBuilder) buildJobCR(build *domain.Build) *unstructured.Unstructured {
	name := jobName(build)

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "batch/v1",
			"kind":       "Job",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": b.defaultNS,
				"labels": map[string]interface{}{
					"app.kubernetes.io/name":       "browser-build",
					"browser-build/build-id":       build.ID.String(),
					"browser-build/chromium-major": majorVersion(build.ChromiumVersion),
				},
			},
			"spec": map[string]interface{}{
				"backoffLimit": int64(0),
				"template": map[string]interface{}{
					"spec": map[string]interface{}{
						"restartPolicy": "Never",
						"containers": []interface{}{
							map[string]interface{}{
								"name":  "builder",
								"image": b.image,
								"args":  []interface{}{"-version", build.ChromiumVersion},
								"env": []interface{}{
									map[string]interface{}{
										"name":  "PACKAGE_RELEASE",
										"value": strconv.Itoa(build.PackageRelease),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func majorVersion(version string) string {
	for i := 0; i < len(version); i++ {
		if version[i] == '.' {
			return version[:i]
		}
	}
	return version
}
