package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldBank          = "bank"
	FieldCategory      = "category"
	FieldKeyword       = "keyword"
	FieldRowCount      = "rows"
	FieldImported      = "imported"
	FieldCategorized   = "categorized"
	FieldSkipped       = "skipped"
	FieldTransactionID = "transaction_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentImport   = "import"
	ComponentClassify = "classify"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpList       = "list"
	OpImport     = "import"
	OpClassify   = "classify"
	OpReclassify = "reclassify"
	OpParse      = "parse"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithUserID adds the acting user
func (f LogFields) WithUserID(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithImport adds import outcome fields
func (f LogFields) WithImport(rows, imported, categorized, skipped int) LogFields {
	f[FieldRowCount] = rows
	f[FieldImported] = imported
	f[FieldCategorized] = categorized
	f[FieldSkipped] = skipped
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
