package monitor

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"gitlab.com/extmon/extmon"
)

// HAR is an HTTP Archive 1.2 document, see
// http://www.softwareishard.com/blog/har-12-spec/
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog per the 1.2 schema
type HARLog struct {
	Version string     `json:"version"`
	Creator HARCreator `json:"creator"`
	Browser HARCreator `json:"browser"`
	Pages   []HARPage  `json:"pages"`
	Entries []HAREntry `json:"entries"`
}

// HARCreator identifies the exporting tool
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HARPage groups entries under one logical page load
type HARPage struct {
	StartedDateTime string         `json:"startedDateTime"`
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	PageTimings     HARPageTimings `json:"pageTimings"`
}

// HARPageTimings per schema, -1 when unknown
type HARPageTimings struct {
	OnContentLoad float64 `json:"onContentLoad"`
	OnLoad        float64 `json:"onLoad"`
}

// HAREntry is one captured exchange
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Cache           struct{}    `json:"cache"`
	Timings         HARTimings  `json:"timings"`
}

// HARRequest half of an entry
type HARRequest struct {
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	HTTPVersion string         `json:"httpVersion"`
	Cookies     []HARNameValue `json:"cookies"`
	Headers     []HARNameValue `json:"headers"`
	QueryString []HARNameValue `json:"queryString"`
	PostData    *HARPostData   `json:"postData,omitempty"`
	HeadersSize int            `json:"headersSize"`
	BodySize    int            `json:"bodySize"`
}

// HARResponse half of an entry
type HARResponse struct {
	Status      int            `json:"status"`
	StatusText  string         `json:"statusText"`
	HTTPVersion string         `json:"httpVersion"`
	Cookies     []HARNameValue `json:"cookies"`
	Headers     []HARNameValue `json:"headers"`
	Content     HARContent     `json:"content"`
	RedirectURL string         `json:"redirectURL"`
	HeadersSize int            `json:"headersSize"`
	BodySize    int            `json:"bodySize"`
}

// HARContent of a response
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARPostData of a request
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARNameValue pair
type HARNameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARTimings, only wait is measurable from paired timestamps
type HARTimings struct {
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// BuildHAR transforms the buffered request/response pairs into a HAR 1.2
// archive. Pure function of the buffer's current state.
func BuildHAR(sessionID string, start time.Time, buf *Buffer) *HAR {
	network := buf.NetworkEvents()

	responses := make(map[string]*extmon.NetworkEvent)
	for _, ev := range network {
		if ev.IsResponse() {
			if _, ok := responses[ev.ID]; !ok {
				responses[ev.ID] = ev
			}
		}
	}

	entries := make([]HAREntry, 0)
	for _, req := range network {
		if !req.IsRequest() {
			continue
		}
		resp := responses[req.ID]
		entries = append(entries, harEntry(req, resp))
	}

	return &HAR{Log: HARLog{
		Version: "1.2",
		Creator: HARCreator{Name: "extmon", Version: "1.0.0"},
		Browser: HARCreator{Name: "Chrome"},
		Pages: []HARPage{{
			StartedDateTime: start.Format(time.RFC3339Nano),
			ID:              sessionID,
			Title:           "extmon session",
			PageTimings:     HARPageTimings{OnContentLoad: -1, OnLoad: -1},
		}},
		Entries: entries,
	}}
}

func harEntry(req, resp *extmon.NetworkEvent) HAREntry {
	var wait float64
	if resp != nil && resp.Timestamp.After(req.Timestamp) {
		wait = float64(resp.Timestamp.Sub(req.Timestamp)) / float64(time.Millisecond)
	}

	method := req.Method
	if method == "" {
		method = "GET"
	}

	entry := HAREntry{
		StartedDateTime: req.Timestamp.Format(time.RFC3339Nano),
		Time:            wait,
		Request: HARRequest{
			Method:      method,
			URL:         req.URL,
			HTTPVersion: "HTTP/1.1",
			Cookies:     []HARNameValue{},
			Headers:     headersToHAR(req.Headers),
			QueryString: queryToHAR(req.URL),
			HeadersSize: -1,
			BodySize:    len(req.PostData),
		},
		Response: HARResponse{
			HTTPVersion: "HTTP/1.1",
			Cookies:     []HARNameValue{},
			Headers:     []HARNameValue{},
			Content:     HARContent{MimeType: "text/plain"},
			HeadersSize: -1,
		},
		Timings: HARTimings{Wait: wait},
	}

	if req.PostData != "" {
		entry.Request.PostData = &HARPostData{
			MimeType: contentType(req.Headers),
			Text:     req.PostData,
		}
	}

	if resp != nil {
		entry.Response.Status = resp.Status
		entry.Response.StatusText = resp.StatusText
		entry.Response.Headers = headersToHAR(resp.Headers)
		entry.Response.Content = HARContent{
			Size:     len(resp.Body),
			MimeType: orDefault(resp.MimeType, "text/plain"),
			Text:     resp.Body,
		}
		entry.Response.BodySize = len(resp.Body)
	}
	return entry
}

func headersToHAR(headers map[string]string) []HARNameValue {
	out := make([]HARNameValue, 0, len(headers))
	for name, value := range headers {
		out = append(out, HARNameValue{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func queryToHAR(raw string) []HARNameValue {
	out := make([]HARNameValue, 0)
	u, err := url.Parse(raw)
	if err != nil {
		return out
	}
	for name, values := range u.Query() {
		for _, value := range values {
			out = append(out, HARNameValue{Name: name, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func contentType(headers map[string]string) string {
	for name, value := range headers {
		if strings.EqualFold(name, "content-type") {
			return value
		}
	}
	return "application/octet-stream"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
