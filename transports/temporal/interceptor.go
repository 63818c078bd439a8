package temporal

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/interceptor"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/interceptors"
)

type workerInterceptor struct {
	interceptor.WorkerInterceptorBase
	ic       interceptors.Interceptor
	infoFunc func(ctx context.Context) activity.Info
}

// NewWorkerInterceptor returns a worker interceptor that runs every activity
// execution through ic.
func NewWorkerInterceptor(ic interceptors.Interceptor) interceptor.WorkerInterceptor {
	return &workerInterceptor{ic: ic, infoFunc: activity.GetInfo}
}

func (w *workerInterceptor) InterceptActivity(ctx context.Context, next interceptor.ActivityInboundInterceptor) interceptor.ActivityInboundInterceptor {
	a := &activityInterceptor{root: w}
	a.Next = next
	return a
}

type activityInterceptor struct {
	interceptor.ActivityInboundInterceptorBase
	root *workerInterceptor
}

func (a *activityInterceptor) ExecuteActivity(ctx context.Context, in *interceptor.ExecuteActivityInput) (interface{}, error) {
	job := JobFromInfo(a.root.infoFunc(ctx), in.Args)
	return a.root.ic.Intercept(ctx, interceptors.NewMessageInvocation(job),
		interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
			return a.Next.ExecuteActivity(ctx, in)
		}))
}

// JobFromInfo describes an activity execution as a job. The workflow id is
// the process id. Attempts start at 1, so the first attempt has no retries.
func JobFromInfo(info activity.Info, args []interface{}) *contracts.Job {
	job := &contracts.Job{
		Key:                info.ActivityID,
		Type:               info.ActivityType.Name,
		BpmnProcessID:      info.WorkflowExecution.ID,
		ProcessInstanceKey: info.WorkflowExecution.RunID,
		Worker:             info.TaskQueue,
	}
	if info.Attempt > 1 {
		job.Retries = int(info.Attempt) - 1
	}
	if len(args) > 0 {
		job.Variables = map[string]any{"args": args}
	}
	return job
}
