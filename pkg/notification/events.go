package notification

import (
	"fmt"

	"github.com/moneta-app/moneta/internal/event_bus"
)

// RegisterSubscriptions makes the notification service react to decision
// events: whenever an administrator decides on a budget or remittance, the
// submitter gets a notification.
func RegisterSubscriptions(bus *event_bus.EventBus, service Service) {
	event_bus.SubscribeTyped(bus, event_bus.BudgetDecidedEvent,
		func(e event_bus.EventT[event_bus.BudgetDecided]) error {
			title := fmt.Sprintf("Budget %q %s", e.Data.Name, statusWord(e.Data.Status))
			body := fmt.Sprintf("Your budget %q (amount %s) was %s.",
				e.Data.Name, e.Data.Amount.String(), statusWord(e.Data.Status))
			if e.Data.Note != "" {
				body += " Note: " + e.Data.Note
			}
			return service.Notify(e.Context(), e.Data.CreatedBy, title, body)
		})

	event_bus.SubscribeTyped(bus, event_bus.RemittanceDecidedEvent,
		func(e event_bus.EventT[event_bus.RemittanceDecided]) error {
			title := fmt.Sprintf("Remittance %s", statusWord(e.Data.Status))
			body := fmt.Sprintf("Your remittance of %s was %s.",
				e.Data.Amount.String(), statusWord(e.Data.Status))
			if e.Data.Note != "" {
				body += " Note: " + e.Data.Note
			}
			return service.Notify(e.Context(), e.Data.UserId, title, body)
		})
}

func statusWord(status string) string {
	switch status {
	case "APPROVED":
		return "approved"
	case "REJECTED":
		return "rejected"
	default:
		return "updated"
	}
}
