package errors

// Template defines a registered violation.
type Template struct {
	Category Category
	Message  string
	Detail   string
	Hint     string
}

// registry maps violation codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Reactive Errors (E100-E109)
	// ============================================

	"E101": {
		Category: CategoryReactive,
		Message:  "Possible circular dependency",
		Detail:   "A signal was written while its value was borrowed, either by its own propagation or by a derived computation reading it.",
		Hint:     "Derive a new signal instead of writing back into a source from inside its own Map.",
	},
	"E102": {
		Category: CategoryReactive,
		Message:  "Signal used after release",
		Detail:   "A read handle was used after Release was called on it.",
		Hint:     "Clone the handle before releasing it if another owner still needs it.",
	},
	"E103": {
		Category: CategoryReactive,
		Message:  "Scope disposed",
		Detail:   "A handle was kept by a scope that had already been disposed.",
	},
	"E104": {
		Category: CategoryReactive,
		Message:  "Vector modified during notification",
		Detail:   "A MutableVec was changed by one of its own subscribers while a diff was being delivered.",
		Hint:     "Queue the change on the scheduler so it runs after the current notification.",
	},

	// ============================================
	// Memo Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryMemo,
		Message:  "Key reused within a frame",
		Detail:   "Each (key type, value type, key) triple may be requested at most once per memo frame.",
		Hint:     "Include every functional dependency in the key so distinct values use distinct keys.",
	},
	"E111": {
		Category: CategoryMemo,
		Message:  "Memo frame used after end",
		Detail:   "Cache was called on a frame whose End had already run.",
		Hint:     "Start a new frame with MemoCache.Frame for every render pass.",
	},

	// ============================================
	// Children Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryChildren,
		Message:  "Child index out of range",
		Detail:   "A delta referred to an index outside the current list.",
	},
	"E121": {
		Category: CategoryChildren,
		Message:  "Unknown child group",
		Detail:   "A child group index was used that was never allocated on this parent.",
	},
	"E122": {
		Category: CategoryChildren,
		Message:  "Child group already occupied",
		Detail:   "InsertOnlyChild was called on a group that already holds a node.",
	},
	"E123": {
		Category: CategoryChildren,
		Message:  "Node is not a child of parent",
		Detail:   "A tree mutation named a reference node that does not belong to the parent.",
	},

	// ============================================
	// Scheduler Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryScheduler,
		Message:  "Nil update",
		Detail:   "A nil function was queued on the scheduler.",
	},

	// ============================================
	// Config Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "silk.json could not be read or is not valid JSON.",
		Hint:     "Check that silk.json is valid JSON",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Hint:     "Run 'silk init' to write a default silk.json",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
