package models

// RequestState is the lifecycle phase of the most recent fetch
type RequestState string

const (
	StateIdle    RequestState = "idle"
	StateLoading RequestState = "loading"
	StateLoaded  RequestState = "loaded"
	StateFailed  RequestState = "failed"
)

// RequestStatus is the request lifecycle shown to the user.
// Reason is only set when State is StateFailed.
type RequestStatus struct {
	State  RequestState `json:"state"`
	Reason string       `json:"error,omitempty"`
}

// Idle returns the status before the first fetch
func Idle() RequestStatus { return RequestStatus{State: StateIdle} }

// Loading returns the status of an in-flight fetch
func Loading() RequestStatus { return RequestStatus{State: StateLoading} }

// Loaded returns the status after a successful fetch
func Loaded() RequestStatus { return RequestStatus{State: StateLoaded} }

// Failed returns the status after a failed fetch
func Failed(reason string) RequestStatus {
	return RequestStatus{State: StateFailed, Reason: reason}
}

func (s RequestStatus) IsLoading() bool { return s.State == StateLoading }
func (s RequestStatus) IsLoaded() bool  { return s.State == StateLoaded }
func (s RequestStatus) IsFailed() bool  { return s.State == StateFailed }
