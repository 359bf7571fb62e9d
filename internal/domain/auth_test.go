package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		label string
		role  Role
		ok    bool
	}{
		{"admin", RoleAdmin, true},
		{" Analyst ", RoleAnalyst, true},
		{"VIEWER", RoleViewer, true},
		{"root", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		role, ok := ParseRole(tc.label)
		assert.Equal(t, tc.ok, ok, tc.label)
		if tc.ok {
			assert.Equal(t, tc.role, role, tc.label)
		}
	}
}

func TestCanEvaluate(t *testing.T) {
	assert.True(t, AuthContext{Role: RoleAdmin}.CanEvaluate())
	assert.True(t, AuthContext{Role: RoleAnalyst}.CanEvaluate())
	assert.False(t, AuthContext{Role: RoleViewer}.CanEvaluate())
	assert.False(t, AuthContext{}.CanEvaluate())
}
