package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/messaging-service/internal/domain"
)

func TestNewDraftResponse_Links(t *testing.T) {
	b := NewLinkBuilder("/api/v1")

	t.Run("unsent drafts advertise edits", func(t *testing.T) {
		req := require.New(t)
		resp := b.NewDraftResponse(&domain.Draft{ID: 3, State: domain.DraftStateUnsent})

		req.Equal("/api/v1/drafts/3", resp.Links["self"].Href)
		req.Equal("/api/v1/drafts", resp.Links["drafts"].Href)
		req.Equal("/api/v1/drafts/3/send", resp.Links["send"].Href)
		req.Equal("PUT", resp.Links["send"].Method)
		req.Contains(resp.Links, "update")
		req.Contains(resp.Links, "delete")
		req.Equal(domain.DraftStateUnsent, resp.State)
	})

	t.Run("sent drafts are read only", func(t *testing.T) {
		req := require.New(t)
		resp := b.NewDraftResponse(&domain.Draft{ID: 3, State: domain.DraftStateSent})

		req.NotContains(resp.Links, "update")
		req.NotContains(resp.Links, "send")
		req.NotContains(resp.Links, "delete")
		req.Equal(domain.DraftStateSent, resp.State)
	})
}

func TestNewMessageResponse_HidesSourceDraft(t *testing.T) {
	req := require.New(t)
	source := int64(4)
	msg := &domain.Message{ID: 1, SenderID: 1, RecipientID: 2, SentAt: time.Now(), Title: "Hi", Body: "Hello", SourceDraftID: &source}

	raw, err := json.Marshal(NewLinkBuilder("").NewMessageResponse(msg))
	req.NoError(err)

	var fields map[string]any
	req.NoError(json.Unmarshal(raw, &fields))
	req.NotContains(fields, "sourceDraftId")
	req.NotContains(fields, "sourceDraft")
	req.Equal("/messages/1", fields["_links"].(map[string]any)["self"].(map[string]any)["href"])
}

func TestNewListResponses_EmptyIsArray(t *testing.T) {
	req := require.New(t)
	b := NewLinkBuilder("/v1")

	raw, err := json.Marshal(b.NewDraftListResponse(nil))
	req.NoError(err)
	req.Contains(string(raw), `"data":[]`)

	raw, err = json.Marshal(b.NewMessageListResponse([]domain.Message{}))
	req.NoError(err)
	req.Contains(string(raw), `"data":[]`)
}
