package widget

import "context"

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Always answers every prompt with yes.
var Always Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Never answers every prompt with no.
var Never Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
