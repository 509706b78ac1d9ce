// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Ops
	"health": SecurityPublic,

	// Catalog - Public
	"product.availability": SecurityPublic,

	// Cart - Access Protected
	"cart.validate": SecurityAccess,

	// Owner confirmation - Access Protected
	"suborder.get":          SecurityAccess,
	"suborder.item.confirm": SecurityAccess,
	"suborder.item.reject":  SecurityAccess,
	"suborder.bulk_confirm": SecurityAccess,
	"suborder.contract":     SecurityAccess,
	"suborder.sign":         SecurityAccess,

	// Renter decision - Access Protected
	"suborder.cancel_all":     SecurityAccess,
	"suborder.accept_partial": SecurityAccess,
	"suborder.cancel_pending": SecurityAccess,
	"suborder.refund_preview": SecurityAccess,

	// Notifications - Access Protected
	"notification.list": SecurityAccess,
	"notification.read": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
