package gate

import "context"

// Policy narrows a granted permission down to a specific record, typically
// by checking who owns it. resource is never nil when a Policy is consulted.
type Policy[U any] interface {
	Can(ctx context.Context, subject U, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[U any] func(ctx context.Context, subject U, action Action, resource any) bool

// Can calls f.
func (f PolicyFunc[U]) Can(ctx context.Context, subject U, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
