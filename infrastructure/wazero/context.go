package wazero

import (
	"context"

	"github.com/reglet-dev/portbridge/hostfuncs"
	"github.com/tetratelabs/wazero/api"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var (
	unitNameKey    = &contextKey{name: "unit_name"}
	switchboardKey = &contextKey{name: "switchboard"}
)

// WithUnitName adds the unit name to the context for log attribution.
func WithUnitName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, unitNameKey, name)
}

// UnitNameFromContext retrieves the unit name from the context.
func UnitNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(unitNameKey).(string)
	return name, ok
}

// GetUnitName extracts the unit name from context, falling back to the module name.
func GetUnitName(ctx context.Context, mod api.Module) string {
	if name, ok := UnitNameFromContext(ctx); ok {
		return name
	}
	return mod.Name()
}

// WithSwitchboard binds the switchboard that receives emissions made during
// calls into a guest using ctx.
func WithSwitchboard(ctx context.Context, board *hostfuncs.Switchboard) context.Context {
	return context.WithValue(ctx, switchboardKey, board)
}

// SwitchboardFromContext retrieves the bound switchboard.
func SwitchboardFromContext(ctx context.Context) (*hostfuncs.Switchboard, bool) {
	board, ok := ctx.Value(switchboardKey).(*hostfuncs.Switchboard)
	return board, ok && board != nil
}
