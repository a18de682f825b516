package gate

// Action is the verb half of a permission ("create" in "product:create").
type Action string

// Generic CRUD actions. Applications declare their own verbs as extra Action
// constants next to the resources that use them.
const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
