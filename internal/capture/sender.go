package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/applytrack/applytrackd/internal/models"
)

// saveMessage mirrors the wire shape of the storage owner's message
// endpoint.
type saveMessage struct {
	Action string           `json:"action"`
	Data   models.JobRecord `json:"data"`
}

// HTTPSender crosses the message boundary over HTTP: it posts the
// saveJobApplication verb to the storage-owning API. Transport errors (can't
// reach the endpoint, bad status) come back as errors so the session retries
// them; a decoded {success:false} reply is returned as a response, not an
// error, and is not retried.
type HTTPSender struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSender(baseURL string) *HTTPSender {
	return &HTTPSender{BaseURL: baseURL, Client: http.DefaultClient}
}

// SavePending writes the pending-capture checkpoint slot, so HTTPSender also
// satisfies CheckpointStore.
func (s *HTTPSender) SavePending(p models.PendingCapture) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, s.BaseURL+"/api/v1/capture/pending", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

// ClearPending removes the checkpoint slot.
func (s *HTTPSender) ClearPending() error {
	req, err := http.NewRequest(http.MethodDelete, s.BaseURL+"/api/v1/capture/pending", nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *HTTPSender) do(req *http.Request) error {
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("storage owner answered %s", resp.Status)
	}
	return nil
}

func (s *HTTPSender) SaveJobApplication(ctx context.Context, record models.JobRecord) (SaveResponse, error) {
	body, err := json.Marshal(saveMessage{Action: "saveJobApplication", Data: record})
	if err != nil {
		return SaveResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return SaveResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return SaveResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return SaveResponse{}, fmt.Errorf("storage owner unavailable: %s", resp.Status)
	}

	var out SaveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SaveResponse{}, err
	}
	return out, nil
}
