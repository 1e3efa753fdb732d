package models

import (
	"fmt"
	"strconv"
)

// InstanceID identifies one placed widget instance on the host.
type InstanceID int

// InvalidInstanceID is never assigned to a real instance.
const InvalidInstanceID InstanceID = 0

func (id InstanceID) String() string {
	return strconv.Itoa(int(id))
}

// ActionTag names what a trigger does when fired.
type ActionTag string

const (
	TagRefreshWidget ActionTag = "REFRESH_WIDGET"
	TagOpenApp       ActionTag = "OPEN_APP"
)

// ActionScope is either global or bound to a single instance.
type ActionScope struct {
	Global     bool       `json:"global"`
	InstanceID InstanceID `json:"instance_id,omitempty"`
}

// ActionDescriptor is a data-only description of a tappable action.
type ActionDescriptor struct {
	Tag   ActionTag   `json:"tag"`
	Scope ActionScope `json:"scope"`
	// WidgetID is the payload; zero when the action carries none.
	WidgetID InstanceID `json:"widget_id,omitempty"`
}

// Key identifies the registration slot of the descriptor. Descriptors
// with equal keys share one trigger handle.
func (d ActionDescriptor) Key() string {
	if d.Scope.Global {
		return fmt.Sprintf("%s/global", d.Tag)
	}
	return fmt.Sprintf("%s/instance/%d", d.Tag, d.Scope.InstanceID)
}

// RenderPlan is the fully resolved output of one render pass.
type RenderPlan struct {
	TitleText     string           `json:"title_text"`
	BodyText      string           `json:"body_text"`
	TimestampText string           `json:"timestamp_text"`
	ResolvedColor Color            `json:"resolved_color"`
	RefreshAction ActionDescriptor `json:"refresh_action"`
	OpenAppAction ActionDescriptor `json:"open_app_action"`
}

// TriggerHandle is a registered, fireable action.
type TriggerHandle struct {
	ID         string           `json:"id"`
	Descriptor ActionDescriptor `json:"descriptor"`
}
