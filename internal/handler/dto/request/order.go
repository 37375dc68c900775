package request

import (
	"strings"

	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderStatusChangedRequest struct {
	OrderID   int64        `json:"order_id" binding:"required"`
	OldStatus string       `json:"old_status"`
	NewStatus string       `json:"new_status" binding:"required"`
	Order     OrderPayload `json:"order" binding:"required"`
}

type OrderPayload struct {
	Email         string             `json:"email" binding:"required,email"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Phone         string             `json:"phone"`
	WPUserID      *int64             `json:"wp_user_id,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	TotalCents    int64              `json:"total_cents"`
	SeasonTag     string             `json:"season_tag"`
	PaymentPlanID *uuid.UUID         `json:"payment_plan_id,omitempty"`
	Lines         []OrderLinePayload `json:"lines" binding:"required,min=1,dive"`
}

type OrderLinePayload struct {
	Descriptor string `json:"descriptor" binding:"required"`
	Formula    string `json:"formula"`
}

func (r OrderStatusChangedRequest) ToCommand() commands.StatusChange {
	lines := make([]commands.OrderLine, len(r.Order.Lines))
	for i, l := range r.Order.Lines {
		lines[i] = commands.OrderLine{
			Descriptor: strings.TrimSpace(l.Descriptor),
			Formula:    strings.TrimSpace(l.Formula),
		}
	}
	return commands.StatusChange{
		OrderID:   r.OrderID,
		OldStatus: r.OldStatus,
		NewStatus: r.NewStatus,
		Order: commands.Order{
			ID:            r.OrderID,
			Email:         strings.TrimSpace(r.Order.Email),
			FirstName:     strings.TrimSpace(r.Order.FirstName),
			LastName:      strings.TrimSpace(r.Order.LastName),
			Phone:         strings.TrimSpace(r.Order.Phone),
			WPUserID:      r.Order.WPUserID,
			PaymentMethod: r.Order.PaymentMethod,
			TotalCents:    r.Order.TotalCents,
			SeasonTag:     strings.TrimSpace(r.Order.SeasonTag),
			PaymentPlanID: r.Order.PaymentPlanID,
			Lines:         lines,
		},
	}
}
