package meeting

import "context"

// PermissionProber asks the OS for capture permission. Both calls may
// suspend on a dialog; cancellation must surface as an error.
type PermissionProber interface {
	RequestCamera(ctx context.Context) (bool, error)
	RequestMicrophone(ctx context.Context) (bool, error)
}

// GrantAll approves every request. Used by headless clients and tests.
type GrantAll struct{}

func (GrantAll) RequestCamera(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (GrantAll) RequestMicrophone(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
