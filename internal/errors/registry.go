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
	// ============================================
	// Payload Errors (D001-D009)
	// ============================================

	"D001": {
		Category: CategoryPayload,
		Message:  "Drag payload is not serializable",
		Detail:   "The data bound to a drag source could not be deep-copied. Functions, channels and complex numbers cannot be transferred. No interaction was started.",
	},
	"D002": {
		Category: CategoryInteraction,
		Message:  "Invalid interaction",
		Detail:   "An interaction needs a non-empty source and non-nil data.",
	},
	"D003": {
		Category: CategoryPayload,
		Message:  "Drag payload decode failed",
		Detail:   "The in-flight payload is missing or does not match the requested type.",
	},
	"D004": {
		Category: CategoryInteraction,
		Message:  "Invalid list index",
		Detail:   "The index is outside the list's items.",
	},

	// ============================================
	// Binding Errors (D010-D019)
	// ============================================

	"D010": {
		Category: CategoryBinding,
		Message:  "Element not found",
		Detail:   "No element with this id is registered in the document.",
	},
	"D011": {
		Category: CategoryBinding,
		Message:  "Unknown client event",
		Detail:   "The client sent an event type that the coordinator does not handle.",
	},

	// ============================================
	// Config Errors (D020-D029)
	// ============================================

	"D020": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "dndlist.json was not found in the given directory.",
	},
	"D021": {
		Category: CategoryConfig,
		Message:  "Configuration parse failed",
		Detail:   "dndlist.json is not valid JSON (comments and trailing commas are allowed).",
	},
	"D022": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or not recognised.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
