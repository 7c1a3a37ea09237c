package kubeutil

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// NewClientset builds a clientset from the first kubeconfig it finds.
//
// Search order, most preferred first: the explicit searchPath entries,
// the KUBECONFIG environment variable, then `~/.kube/config`. When none
// of them exists, the in-cluster config is used.
func NewClientset(searchPath ...string) (*kubernetes.Clientset, error) {
	kubeconfig := ""

	candidates := append([]string{}, searchPath...)
	if k := os.Getenv("KUBECONFIG"); k != "" {
		candidates = append(candidates, k)
	}
	if home := homedir.HomeDir(); home != "" {
		candidates = append(candidates, filepath.Join(home, ".kube", "config"))
	}
	for _, c := range candidates {
		if s, err := os.Stat(c); err == nil && !s.IsDir() {
			kubeconfig = c
			break
		}
	}

	var config *rest.Config
	var err error
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("detect kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("connect to kubernetes: %w", err)
	}
	return clientset, nil
}
