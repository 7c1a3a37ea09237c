package k8s

import (
	"context"

	"github.com/opsdeck/opsdeck/pkg/domain/jobrun"
	"github.com/opsdeck/opsdeck/pkg/utils/slices"
	kubebatch "k8s.io/api/batch/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// label put by helm on resources it manages. Used as the owner of a job
// when the job has no controller reference.
const labelHelmRelease = "meta.helm.sh/release-name"

type Interface interface {
	// ListRecords lists job runs in the namespace.
	ListRecords(ctx context.Context, namespace string) ([]jobrun.Record, error)
}

type impl struct {
	client kubernetes.Interface
}

func New(client kubernetes.Interface) Interface {
	return &impl{client: client}
}

func (i *impl) ListRecords(ctx context.Context, namespace string) ([]jobrun.Record, error) {
	jobs, err := i.client.BatchV1().Jobs(namespace).List(ctx, kubeapimeta.ListOptions{})
	if err != nil {
		return nil, err
	}
	return slices.Map(jobs.Items, FromJob), nil
}

// FromJob converts a kubernetes Job into a job run record.
//
// The owner is taken from the job's first owner reference; jobs without one
// fall back to the helm release label, then to empty.
func FromJob(job kubebatch.Job) jobrun.Record {
	owner := ""
	if refs := job.GetOwnerReferences(); 0 < len(refs) {
		owner = refs[0].Name
	} else if release, ok := job.Labels[labelHelmRelease]; ok {
		owner = release
	}

	var image string
	var command []string
	if containers := job.Spec.Template.Spec.Containers; 0 < len(containers) {
		image = containers[0].Image
		command = containers[0].Command
	}

	rec := jobrun.Record{
		Identity: jobrun.Identity{
			Name:      job.Name,
			Namespace: job.Namespace,
		},
		Counters: jobrun.Counters{
			Active:    job.Status.Active,
			Succeeded: job.Status.Succeeded,
			Failed:    job.Status.Failed,
		},
		CreatedAt: job.CreationTimestamp.Time,
		Owner:     owner,
		Image:     image,
		Command:   command,
	}

	if t := job.Status.StartTime; t != nil {
		v := t.Time
		rec.StartedAt = &v
	}
	if t := job.Status.CompletionTime; t != nil {
		v := t.Time
		rec.CompletedAt = &v
	}
	if conds := job.Status.Conditions; 0 < len(conds) {
		v := conds[0].LastTransitionTime.Time
		rec.LastTransition = &v
	}

	return rec
}
