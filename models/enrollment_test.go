package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentHasAccess(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name       string
		enrollment Enrollment
		want       bool
	}{
		{
			name:       "completed and granted",
			enrollment: Enrollment{PaymentStatus: PaymentCompleted, AccessGranted: true},
			want:       true,
		},
		{
			name:       "pending payment blocks access even if access flag set",
			enrollment: Enrollment{PaymentStatus: PaymentPending, AccessGranted: true},
			want:       false,
		},
		{
			name:       "under review blocks access",
			enrollment: Enrollment{PaymentStatus: PaymentUnderReview, AccessGranted: true},
			want:       false,
		},
		{
			name:       "refunded blocks access",
			enrollment: Enrollment{PaymentStatus: PaymentRefunded, AccessGranted: true},
			want:       false,
		},
		{
			name:       "completed but access revoked",
			enrollment: Enrollment{PaymentStatus: PaymentCompleted, AccessGranted: false},
			want:       false,
		},
		{
			name:       "expired enrollment",
			enrollment: Enrollment{PaymentStatus: PaymentCompleted, AccessGranted: true, ExpiryDate: &past},
			want:       false,
		},
		{
			name:       "future expiry still valid",
			enrollment: Enrollment{PaymentStatus: PaymentCompleted, AccessGranted: true, ExpiryDate: &future},
			want:       true,
		},
		{
			name:       "nil expiry means lifetime access",
			enrollment: Enrollment{PaymentStatus: PaymentCompleted, AccessGranted: true, ExpiryDate: nil},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.enrollment.HasAccess(now))
		})
	}
}
