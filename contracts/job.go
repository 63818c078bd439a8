package contracts

// Job is a unit of work activated by a workflow engine.
//
// The correlation ID of a job is the id of the process that created it, so
// request and response log entries for the same process line up.
type Job struct {
	Key                string            `json:"key"`
	Type               string            `json:"type"`
	BpmnProcessID      string            `json:"bpmnProcessId"`
	ProcessInstanceKey string            `json:"processInstanceKey,omitempty"`
	ElementID          string            `json:"elementId,omitempty"`
	Worker             string            `json:"worker,omitempty"`
	Retries            int               `json:"retries,omitempty"`
	Variables          map[string]any    `json:"variables,omitempty"`
	CustomHeaders      map[string]string `json:"customHeaders,omitempty"`
}

// NewJob creates a job of the given type for a process
func NewJob(jobType, bpmnProcessID string) *Job {
	return &Job{
		Key:           NewBaseMessage(jobType).ID,
		Type:          jobType,
		BpmnProcessID: bpmnProcessID,
	}
}

// GetID returns the job key
func (j *Job) GetID() string {
	return j.Key
}

// GetType returns the job type
func (j *Job) GetType() string {
	return j.Type
}

// GetCorrelationID returns the process id
func (j *Job) GetCorrelationID() string {
	return j.BpmnProcessID
}
