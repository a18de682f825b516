package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Emma781227/Ble-dor/gate"
)

func TestNewPermission(t *testing.T) {
	assert.Equal(t, gate.Permission("product:create"), gate.NewPermission("product", gate.ActionCreate))
}

func TestPermission_Parse(t *testing.T) {
	tests := []struct {
		name     string
		perm     gate.Permission
		resource string
		action   gate.Action
	}{
		{"well formed", "order:status", "order", "status"},
		{"wildcard action", "product:*", "product", "*"},
		{"no separator", "invalid", "", ""},
		{"empty action", "order:", "", ""},
		{"empty resource", ":view", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, act := tt.perm.Parse()
			assert.Equal(t, tt.resource, res)
			assert.Equal(t, tt.action, act)
		})
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		name      string
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"exact", "product:create", "product:create", true},
		{"other action", "product:create", "product:delete", false},
		{"other resource", "product:create", "order:create", false},
		{"everything", gate.PermissionAll, "manager:delete", true},
		{"resource wildcard", "product:*", "product:delete", true},
		{"resource wildcard other resource", "product:*", "order:create", false},
		{"malformed grant", "product", "product:view", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.granted.Matches(tt.requested))
		})
	}
}
