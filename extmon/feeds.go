package extmon

// RequestPaused is delivered by the interception layer when a request is
// about to go out, the body (if any) is available at this point.
type RequestPaused struct {
	ID           string
	URL          string
	Method       string
	ResourceType string
	Headers      map[string]string
	PostData     string
	HasPostData  bool
	InitiatorURL string
}

// ResponseReceived is delivered when headers/status are available, the body
// is not fetchable yet.
type ResponseReceived struct {
	ID         string
	URL        string
	Status     int
	StatusText string
	MimeType   string
	Headers    map[string]string
}

// LoadingFinished signals that the body for the exchange is now fetchable
type LoadingFinished struct {
	ID string
}

// BodyFetcher retrieves a finished response body from the transport. The call
// may fail for evicted bodies or certain resource types, callers treat that
// as a soft-fail.
type BodyFetcher interface {
	ResponseBody(id string) (body string, base64Encoded bool, err error)
}

// NetworkFeed consumes the three phase exchange lifecycle
type NetworkFeed interface {
	RequestPaused(ev *RequestPaused)
	ResponseReceived(ev *ResponseReceived)
	LoadingFinished(ev *LoadingFinished, fetcher BodyFetcher)
}

// DomFeed consumes instrumentation events pushed from inside monitored pages
type DomFeed interface {
	DomEvent(ev *DomEvent)
}

// ActivitySource returns activity log records not seen by a previous call.
// An empty batch is normal.
type ActivitySource interface {
	NewActivities() ([]*ActivityEvent, error)
}

// ReportStorer persists session reports keyed by session id
type ReportStorer interface {
	Init() error
	Put(report *SessionReport) error
	Get(id string) (*SessionReport, error)
	List() ([]string, error)
	Close() error
}
