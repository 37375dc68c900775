package response

import (
	"class-sync/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderProcessedResponse struct {
	Processed      bool              `json:"processed"`
	IdentityID     uuid.UUID         `json:"identity_id,omitempty"`
	SubscriptionID uuid.UUID         `json:"subscription_id,omitempty"`
	Lines          []LineResultEntry `json:"lines,omitempty"`
}

type LineResultEntry struct {
	Descriptor string `json:"descriptor"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

func FromOrderResult(res *commands.OrderResult) *OrderProcessedResponse {
	out := &OrderProcessedResponse{
		Processed:      res.Processed,
		IdentityID:     res.IdentityID,
		SubscriptionID: res.SubscriptionID,
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, LineResultEntry{
			Descriptor: l.Descriptor,
			Outcome:    string(l.Outcome),
			Error:      l.Error,
		})
	}
	return out
}
