package redis

import (
	"context"
	"time"

	"github.com/koios/api-widget/pkg/models"
)

// Relay hands control to the foreground app over Redis pub/sub.
type Relay struct {
	client *Client
	now    func() time.Time
}

// NewRelay creates a relay publishing through client.
func NewRelay(client *Client) *Relay {
	return &Relay{client: client, now: time.Now}
}

// Launch opens the app at its default entry point.
func (r *Relay) Launch(ctx context.Context) error {
	return r.client.PublishIntent(ctx, models.AppIntent{
		Action: models.IntentMain,
		SentAt: r.now(),
	})
}

// RequestRefresh asks the app to fetch new data for id.
func (r *Relay) RequestRefresh(ctx context.Context, id models.InstanceID) error {
	return r.client.PublishIntent(ctx, models.AppIntent{
		Action:   models.IntentRefreshWidgetData,
		WidgetID: id,
		SentAt:   r.now(),
	})
}
