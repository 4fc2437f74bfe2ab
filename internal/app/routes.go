package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moneta-app/moneta/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Fund pool
	r.HandleFunc("/api/fund-pool", deps.FundPoolHandler.GetFundPool).Methods("GET")
	r.HandleFunc("/api/fund-pool", deps.FundPoolHandler.ApplyDelta).Methods("POST")

	// Budgets
	r.HandleFunc("/api/budgets", deps.BudgetHandler.ListBudgets).Methods("GET")
	r.HandleFunc("/api/budgets", deps.BudgetHandler.CreateBudget).Methods("POST")
	r.HandleFunc("/api/budgets/{id}", deps.BudgetHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budgets/{id}", deps.BudgetHandler.UpdateBudget).Methods("PUT")
	r.HandleFunc("/api/budgets/{id}/submit", deps.BudgetHandler.SubmitBudget).Methods("POST")
	r.HandleFunc("/api/budgets/{id}/approve", deps.BudgetHandler.ApproveBudget).Methods("POST")
	r.HandleFunc("/api/budgets/{id}/reject", deps.BudgetHandler.RejectBudget).Methods("POST")

	// Remittances
	r.HandleFunc("/api/remittances", deps.RemittanceHandler.ListRemittances).Methods("GET")
	r.HandleFunc("/api/remittances", deps.RemittanceHandler.CreateRemittance).Methods("POST")
	r.HandleFunc("/api/remittances/{id}/approve", deps.RemittanceHandler.ApproveRemittance).Methods("POST")
	r.HandleFunc("/api/remittances/{id}/reject", deps.RemittanceHandler.RejectRemittance).Methods("POST")

	// Transactions
	r.HandleFunc("/api/transactions", deps.TransactionHandler.ListTransactions).Methods("GET")
	r.HandleFunc("/api/transactions/{id}", deps.TransactionHandler.GetTransaction).Methods("GET")

	// Notifications
	r.HandleFunc("/api/notifications", deps.NotificationHandler.ListNotifications).Methods("GET")
	r.HandleFunc("/api/notifications/mark-all-read", deps.NotificationHandler.MarkAllRead).Methods("PATCH")

	// Audit log
	r.HandleFunc("/api/audit", deps.AuditHandler.ListEntries).Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.ListUsers).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
}
