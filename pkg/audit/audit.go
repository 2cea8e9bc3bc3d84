package audit

import (
	"context"
	"time"
)

// Action names what an actor did. Values are stable; dashboards and
// retention rules key off them.
type Action string

const (
	ActionLogin            Action = "auth.login"
	ActionLoginFailed      Action = "auth.login_failed"
	ActionUserCreate       Action = "admin.user_create"
	ActionUserDelete       Action = "admin.user_delete"
	ActionPasswordChange   Action = "admin.password_change"
	ActionPermissionGrant  Action = "admin.permission_grant"
	ActionPermissionRevoke Action = "admin.permission_revoke"

	ActionCompanyCreate     Action = "finance.company_create"
	ActionProjectCreate     Action = "finance.project_create"
	ActionCostBenefitUpsert Action = "finance.cost_benefit_upsert"
	ActionApAccrualCreate   Action = "finance.ap_accrual_create"
	ActionApPaymentCreate   Action = "finance.ap_payment_create"
)

// Event is one audit trail entry
type Event struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    Action    `json:"action"`
	Target    string    `json:"target"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recorder appends audit events somewhere durable
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// NopRecorder discards every event
type NopRecorder struct{}

// Record does nothing
func (NopRecorder) Record(ctx context.Context, e Event) error { return nil }
