package donation

import (
	"strings"

	"tlwd-backend/internal/domain/entity"
)

// MapGatewayStatus maps the gateway's transaction status onto the local
// tri-state. Anything the gateway has not settled stays Pending.
func MapGatewayStatus(gatewayStatus string) string {
	switch strings.ToLower(strings.TrimSpace(gatewayStatus)) {
	case "success":
		return entity.DonationSuccessful
	case "failed", "abandoned", "reversed":
		return entity.DonationFailed
	default:
		return entity.DonationPending
	}
}

// Reconcile returns the status a donation in current should move to after
// the gateway reported gatewayStatus. A terminal donation never returns to
// Pending; a settled gateway verdict is always applied.
func Reconcile(current, gatewayStatus string) string {
	next := MapGatewayStatus(gatewayStatus)
	if next == entity.DonationPending && (current == entity.DonationSuccessful || current == entity.DonationFailed) {
		return current
	}
	return next
}

// MethodFromChannel refines the stored method with the channel the payer
// actually used. Unknown channels keep current.
func MethodFromChannel(channel, current string) string {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "card":
		return entity.MethodCard
	case "bank_transfer", "bank":
		return entity.MethodBankTransfer
	default:
		return current
	}
}

// CanonicalMethod matches method case-insensitively against the known
// methods. An empty method defaults to Card.
func CanonicalMethod(method string) (string, error) {
	if strings.TrimSpace(method) == "" {
		return entity.MethodCard, nil
	}
	for _, m := range entity.DonationMethods {
		if strings.EqualFold(m, strings.TrimSpace(method)) {
			return m, nil
		}
	}
	return "", &entity.ValidationError{
		Field:   "method",
		Message: "Method must be one of: " + strings.Join(entity.DonationMethods, ", "),
	}
}
