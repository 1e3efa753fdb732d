package models

import "time"

// RefreshEvent is delivered when a refresh trigger fires.
type RefreshEvent struct {
	InstanceID InstanceID `json:"instance_id"`
	FiredAt    time.Time  `json:"fired_at"`
}

// Intent actions understood by the foreground application.
const (
	IntentMain              = "MAIN"
	IntentRefreshWidgetData = "REFRESH_WIDGET_DATA"
)

// AppIntent hands control to the foreground application.
type AppIntent struct {
	Action   string     `json:"action"`
	WidgetID InstanceID `json:"widget_id,omitempty"`
	SentAt   time.Time  `json:"sent_at"`
}

// AppliedView is what the host currently shows for one instance.
type AppliedView struct {
	InstanceID    InstanceID    `json:"instance_id"`
	Plan          RenderPlan    `json:"plan"`
	RefreshHandle TriggerHandle `json:"refresh_handle"`
	OpenAppHandle TriggerHandle `json:"open_app_handle"`
	AppliedAt     time.Time     `json:"applied_at"`
	HasPreview    bool          `json:"has_preview"`
}
