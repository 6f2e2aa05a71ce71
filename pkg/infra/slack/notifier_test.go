package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/pergamene/pergamene/pkg/infra/slack"
)

func TestNotifier_NotifyArchive(t *testing.T) {
	ctx := context.Background()
	result := &model.ArchiveResult{
		Name:         "LaureaMagistrale_12_Scienze_Agrarie_2025_15072025_0905",
		Protocol:     "16828",
		Category:     "LaureaMagistrale",
		Faculty:      "Scienze_Agrarie",
		Year:         "2025",
		Total:        12,
		Destinations: []string{"/srv/Archivio_Locale", "/srv/Archivio_Franco"},
	}

	t.Run("posts summary to webhook", func(t *testing.T) {
		var payload map[string]any
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))
		defer ts.Close()

		n := slack.NewNotifier(ts.URL, "#segreteria")
		gt.NoError(t, n.NotifyArchive(ctx, result))

		gt.V(t, payload["channel"]).Equal("#segreteria")
		gt.String(t, payload["text"].(string)).Contains("16828")
		attachments, ok := payload["attachments"].([]any)
		gt.True(t, ok)
		gt.A(t, attachments).Length(1)
	})

	t.Run("webhook failure is returned", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		n := slack.NewNotifier(ts.URL, "")
		gt.Error(t, n.NotifyArchive(ctx, result))
	})
}
