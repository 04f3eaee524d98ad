package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListNotificationsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: defaultInboxLimit},
		{name: "negative uses default", limit: -3, want: defaultInboxLimit},
		{name: "in range passes through", limit: 20, want: 20},
		{name: "oversized is clamped", limit: 5000, want: maxInboxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeNotificationRepo{}
			svc := NewInboxService(repo, 2*time.Second)

			_, err := svc.ListNotifications(context.Background(), "user-a", tt.limit)
			require.NoError(t, err)
			require.Equal(t, tt.want, repo.listLimit)
		})
	}
}
