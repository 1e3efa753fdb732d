// Package widget derives what a widget instance shows from the shared
// snapshot. Everything here is pure: no I/O, no shared state.
package widget

import (
	"time"

	"github.com/koios/api-widget/pkg/models"
)

const (
	DefaultTitle       = "API Widget"
	DefaultBody        = "No data available"
	DefaultAccentColor = "#6750A4"

	timestampLayout = "15:04"
)

// DefaultColor is DefaultAccentColor, parsed.
var DefaultColor = models.Color{A: 0xFF, R: 0x67, G: 0x50, B: 0xA4}

// Render builds the plan for one instance. now supplies the fallback
// timestamp and the location used for formatting.
func Render(snapshot models.Snapshot, instanceID models.InstanceID, now time.Time) models.RenderPlan {
	title := DefaultTitle
	if snapshot.Title != nil {
		title = *snapshot.Title
	}

	body := DefaultBody
	if snapshot.Body != nil {
		body = *snapshot.Body
	}

	updated := now
	if snapshot.LastUpdated != nil {
		updated = time.UnixMilli(*snapshot.LastUpdated).In(now.Location())
	}

	return models.RenderPlan{
		TitleText:     title,
		BodyText:      body,
		TimestampText: FormatTimestamp(updated),
		ResolvedColor: ResolveColor(snapshot.AccentColor),
		RefreshAction: RefreshAction(instanceID),
		OpenAppAction: OpenAppAction(),
	}
}

// FormatTimestamp renders "Updated: HH:MM" on a 24-hour clock.
func FormatTimestamp(t time.Time) string {
	return "Updated: " + t.Format(timestampLayout)
}

// ResolveColor never fails: absent or unparseable input yields DefaultColor.
func ResolveColor(accent *string) models.Color {
	if accent == nil {
		return DefaultColor
	}
	c, err := ParseColor(*accent)
	if err != nil {
		return DefaultColor
	}
	return c
}

// RefreshAction is scoped to and carries the instance id.
func RefreshAction(instanceID models.InstanceID) models.ActionDescriptor {
	return models.ActionDescriptor{
		Tag:      models.TagRefreshWidget,
		Scope:    models.ActionScope{InstanceID: instanceID},
		WidgetID: instanceID,
	}
}

// OpenAppAction is global so every instance shares one handle.
func OpenAppAction() models.ActionDescriptor {
	return models.ActionDescriptor{
		Tag:   models.TagOpenApp,
		Scope: models.ActionScope{Global: true},
	}
}
