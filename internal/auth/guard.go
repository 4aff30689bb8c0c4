package auth

import "github.com/markjakearzadon/trashmate-gobackend/internal/models"

// Allowed reports whether a caller with role actual may perform an operation
// restricted to required. It is the only capability check in the service.
func Allowed(actual models.Role, required ...models.Role) bool {
	for _, r := range required {
		if actual == r {
			return true
		}
	}
	return false
}
