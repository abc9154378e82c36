package domain

// Domain contains the item models shared by the backend, the API client and the UI shell.

// Accepted item status values.
const (
	StatusPending    = "Pendiente"
	StatusInProgress = "En progreso"
	StatusDone       = "Completado"
)

// Item is a tracked work item. Identity is assigned by the backend.
type Item struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ItemCreateRequest is the body of POST /api/items.
type ItemCreateRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ItemUpdateRequest is the body of PUT /api/items/{id}. Nil fields are left untouched.
type ItemUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Status is the payload served at the backend root.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Docs    string `json:"docs,omitempty"`
}

// DataSnapshot is the payload of GET /api/data.
type DataSnapshot struct {
	Items         []Item `json:"items"`
	BackendEngine string `json:"backend_engine"`
}

// ValidStatus reports whether s is one of the accepted status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Statuses lists the accepted status values in workflow order.
func Statuses() []string {
	return []string{StatusPending, StatusInProgress, StatusDone}
}

// Apply returns a copy of item with the non-nil fields of req applied.
func (req ItemUpdateRequest) Apply(item Item) Item {
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	return item
}
