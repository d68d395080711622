package service

import (
	"sync"
	"time"
)

// UploadState is a step of the video upload flow.
type UploadState string

const (
	UploadIdle           UploadState = "idle"
	UploadSelectingFiles UploadState = "selecting-files"
	UploadValidating     UploadState = "validating"
	UploadUploading      UploadState = "uploading"
	UploadSuccess        UploadState = "success"
	UploadFailed         UploadState = "failed"
)

// UploadStatus is the latest state and percentage of a visitor's upload.
type UploadStatus struct {
	State    UploadState `json:"state"`
	Progress int         `json:"progress"`
	Message  string      `json:"message,omitempty"`
}

// ProgressStatusTTL is how long a status outlives its last update once no
// stream is watching it. It is longer than any upload may take.
const ProgressStatusTTL = time.Hour

type trackedStatus struct {
	UploadStatus
	updated time.Time
}

// ProgressHub fans upload status out to the visitor's progress streams.
type ProgressHub struct {
	mu     sync.Mutex
	status map[string]trackedStatus
	subs   map[string]map[chan UploadStatus]struct{}
	ttl    time.Duration
	now    func() time.Time
}

// NewProgressHub creates a new ProgressHub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		status: make(map[string]trackedStatus),
		subs:   make(map[string]map[chan UploadStatus]struct{}),
		ttl:    ProgressStatusTTL,
		now:    time.Now,
	}
}

// Status returns the visitor's latest status, idle when none.
func (h *ProgressHub) Status(visitorID string) UploadStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.status[visitorID]; ok {
		return st.UploadStatus
	}
	return UploadStatus{State: UploadIdle}
}

// Publish records st and hands it to every subscriber. A slow subscriber
// loses intermediate values, never the latest one.
func (h *ProgressHub) Publish(visitorID string, st UploadStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if st.State == UploadIdle {
		delete(h.status, visitorID)
	} else {
		h.status[visitorID] = trackedStatus{UploadStatus: st, updated: h.now()}
	}

	for ch := range h.subs[visitorID] {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// Subscribe returns a channel of status updates and a func to release it.
func (h *ProgressHub) Subscribe(visitorID string) (<-chan UploadStatus, func()) {
	ch := make(chan UploadStatus, 8)

	h.mu.Lock()
	if h.subs[visitorID] == nil {
		h.subs[visitorID] = make(map[chan UploadStatus]struct{})
	}
	h.subs[visitorID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[visitorID], ch)
			if len(h.subs[visitorID]) == 0 {
				delete(h.subs, visitorID)
			}
		})
	}
}

// Sweep drops statuses not updated within the TTL, unless a stream is
// still open for the visitor, and reports how many it dropped.
func (h *ProgressHub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	n := 0
	for id, st := range h.status {
		if len(h.subs[id]) > 0 || now.Sub(st.updated) <= h.ttl {
			continue
		}
		delete(h.status, id)
		n++
	}
	return n
}
