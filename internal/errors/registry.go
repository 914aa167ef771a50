package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Mount errors (E001-E009)
	"E001": {
		Category: CategoryMount,
		Message:  "Mount element not found",
		Detail:   "The page shell has no element with the requested id, so nothing can be rendered.",
	},
	"E002": {
		Category: CategoryMount,
		Message:  "Root already rendered",
		Detail:   "A root renders its component exactly once. Create a new root for a new page session.",
	},
	"E003": {
		Category: CategoryMount,
		Message:  "Page shell could not be parsed",
	},

	// Actor errors (E010-E019)
	"E010": {
		Category: CategoryActor,
		Message:  "Invalid canister id",
		Detail:   "Canister ids use the textual principal encoding: lowercase base32 groups of five separated by dashes, with a CRC32 checksum.",
	},
	"E011": {
		Category: CategoryActor,
		Message:  "Actor construction failed",
	},
	"E012": {
		Category: CategoryActor,
		Message:  "Unknown canister method",
		Detail:   "The method is not part of the canister interface.",
	},
	"E013": {
		Category: CategoryActor,
		Message:  "Canister call failed",
	},
	"E014": {
		Category: CategoryActor,
		Message:  "Actor is not connected",
		Detail:   "Call connect before invoking canister methods.",
	},
	"E015": {
		Category: CategoryActor,
		Message:  "Replica request failed",
	},

	// Config errors (E020-E029)
	"E020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E021": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be read",
	},

	// Transport errors (E030-E039)
	"E030": {
		Category: CategoryTransport,
		Message:  "Page session not found",
		Detail:   "The session expired or was never created. Reload the page.",
	},
	"E031": {
		Category: CategoryTransport,
		Message:  "Malformed client frame",
	},
	"E032": {
		Category: CategoryTransport,
		Message:  "No handler for event",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
