// Package batch holds bulk write items and their per-item outcomes.
package batch

// Action is the bulk action of an item.
type Action string

// Bulk actions.
const (
	ActionIndex  Action = "index"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Item is one bulk operation. Its identity is (id, routing).
type Item struct {
	action  Action
	index   string
	id      string
	routing string
	method  string
	doc     map[string]any
}

// NewIndex creates a full document write.
func NewIndex(index, id, routing string, doc map[string]any) Item {
	return Item{action: ActionIndex, index: index, id: id, routing: routing, doc: doc}
}

// NewUpdate creates a partial document update built by the named partial-data method.
func NewUpdate(index, id, routing, method string, doc map[string]any) Item {
	return Item{action: ActionUpdate, index: index, id: id, routing: routing, method: method, doc: doc}
}

// NewDelete creates a delete.
func NewDelete(index, id, routing string) Item {
	return Item{action: ActionDelete, index: index, id: id, routing: routing}
}

// Action returns the bulk action.
func (i Item) Action() Action { return i.action }

// Index returns the target index name.
func (i Item) Index() string { return i.index }

// ID returns the document id.
func (i Item) ID() string { return i.id }

// Routing returns the routing key, empty when unrouted.
func (i Item) Routing() string { return i.routing }

// Method returns the partial-data method of an update, empty for other actions.
func (i Item) Method() string { return i.method }

// Doc returns the document (nil for deletes).
func (i Item) Doc() map[string]any { return i.doc }
