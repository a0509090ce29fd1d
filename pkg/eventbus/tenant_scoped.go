package eventbus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// FormatTenantScopedTopic appends the tenant id to baseTopic so consumers can
// subscribe to "ranking.updated.v1.*" or to a single tenant.
func FormatTenantScopedTopic(baseTopic, tenantID string) string {
	return fmt.Sprintf("%s.%s", baseTopic, tenantID)
}

// PublishWithTenantScope publishes msg on the tenant-scoped variant of baseTopic.
func PublishWithTenantScope(pub message.Publisher, baseTopic, tenantID string, msg *message.Message) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID cannot be empty for tenant-scoped publish")
	}
	return pub.Publish(FormatTenantScopedTopic(baseTopic, tenantID), msg)
}
