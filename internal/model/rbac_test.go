package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, s := range []string{"read", "create", "update", "delete"} {
		action, err := ParseAction(s)
		require.NoError(t, err)
		require.Equal(t, Action(s), action)
	}

	for _, s := range []string{"", "READ", "list", "admin", "read_all"} {
		_, err := ParseAction(s)
		require.Error(t, err, "expected %q to be rejected", s)
	}
}

func TestPermissionAllows(t *testing.T) {
	tests := []struct {
		name    string
		perm    Permission
		action  Action
		isOwner bool
		want    bool
	}{
		{"read all regardless of owner", Permission{CanReadAll: true}, ActionRead, false, true},
		{"read all when owner too", Permission{CanReadAll: true}, ActionRead, true, true},
		{"read own as owner", Permission{CanRead: true}, ActionRead, true, true},
		{"read own as stranger", Permission{CanRead: true}, ActionRead, false, false},
		{"create ignores owner flag", Permission{CanCreate: true}, ActionCreate, false, true},
		{"create denied", Permission{}, ActionCreate, true, false},
		{"update own as owner", Permission{CanUpdate: true}, ActionUpdate, true, true},
		{"update own as stranger", Permission{CanUpdate: true}, ActionUpdate, false, false},
		{"update all as stranger", Permission{CanUpdateAll: true}, ActionUpdate, false, true},
		{"delete own as owner", Permission{CanDelete: true}, ActionDelete, true, true},
		{"delete all as stranger", Permission{CanDeleteAll: true}, ActionDelete, false, true},
		{"empty rule denies everything", Permission{}, ActionRead, true, false},
		{"unknown action denies", Permission{CanReadAll: true}, Action("list"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.perm.Allows(tt.action, tt.isOwner))
		})
	}
}

func TestGrantsMerge(t *testing.T) {
	var g Grants
	g.Merge(&Permission{CanRead: true, CanCreate: true})
	g.Merge(&Permission{CanReadAll: true, CanDelete: true})
	g.Merge(&Permission{})

	require.True(t, g.Read)
	require.True(t, g.ReadAll)
	require.True(t, g.Create)
	require.True(t, g.Delete)
	require.False(t, g.Update)
	require.False(t, g.UpdateAll)
	require.False(t, g.DeleteAll)
}
