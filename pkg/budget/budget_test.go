package budget

import (
	"testing"
)

func TestBudget_EditableBy(t *testing.T) {
	tests := []struct {
		name   string
		budget Budget
		userId int
		want   bool
	}{
		{
			name:   "creator may edit a draft",
			budget: Budget{CreatedBy: 1, Status: StatusDraft},
			userId: 1,
			want:   true,
		},
		{
			name:   "creator may edit a pending budget",
			budget: Budget{CreatedBy: 1, Status: StatusPending},
			userId: 1,
			want:   true,
		},
		{
			name:   "creator may not edit an approved budget",
			budget: Budget{CreatedBy: 1, Status: StatusApproved},
			userId: 1,
			want:   false,
		},
		{
			name:   "creator may not edit a rejected budget",
			budget: Budget{CreatedBy: 1, Status: StatusRejected},
			userId: 1,
			want:   false,
		},
		{
			name:   "another user may not edit a draft",
			budget: Budget{CreatedBy: 1, Status: StatusDraft},
			userId: 2,
			want:   false,
		},
		{
			name:   "another user may not edit a pending budget",
			budget: Budget{CreatedBy: 1, Status: StatusPending},
			userId: 2,
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.EditableBy(tt.userId); got != tt.want {
				t.Errorf("EditableBy() = %v, want %v", got, tt.want)
			}
		})
	}
}
