// Package temporal logs Temporal activity executions as jobs.
//
// Register the worker interceptor with worker.Options:
//
//	w := worker.New(c, "orders", worker.Options{
//		Interceptors: []interceptor.WorkerInterceptor{temporal.NewWorkerInterceptor(logging)},
//	})
package temporal
