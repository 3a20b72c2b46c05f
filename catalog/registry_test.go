package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("every entry has a valid closed-set category", func(t *testing.T) {
		for _, n := range All() {
			assert.True(t, n.Category.Valid(), "node %s has category %q", n.ID, n.Category)
		}
	})

	t.Run("every port carries exactly one type", func(t *testing.T) {
		for _, n := range All() {
			for _, p := range append(n.Inputs, n.Outputs...) {
				assert.NotEmpty(t, p.Type, "port %s of %s is untyped", p.ID, n.ID)
			}
		}
	})

	t.Run("prerequisites reference known catalog ids", func(t *testing.T) {
		for _, n := range All() {
			for _, prereq := range n.Prerequisites {
				_, ok := Get(prereq)
				assert.True(t, ok, "node %s declares unknown prerequisite %s", n.ID, prereq)
			}
		}
	})

	t.Run("all returns entries ordered by id", func(t *testing.T) {
		all := All()
		require.NotEmpty(t, all)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID)
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, ok := Get("does_not_exist")
		assert.False(t, ok)
	})
}

func TestParseCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := ParseCategory("warehouse-storage")
		require.NoError(t, err)
		assert.Equal(t, CategoryWarehouse, c)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseCategory("blob-storage")
		assert.Error(t, err)
	})
}

func TestPreferredForStage(t *testing.T) {
	t.Run("respects profile visibility", func(t *testing.T) {
		n, ok := PreferredForStage(CategoryWarehouse, "gcp-lakehouse")
		require.True(t, ok)
		assert.Equal(t, "bigquery_warehouse", n.ID)
	})

	t.Run("deterministic without a profile", func(t *testing.T) {
		a, ok := PreferredForStage(CategoryActivation, "")
		require.True(t, ok)
		b, _ := PreferredForStage(CategoryActivation, "")
		assert.Equal(t, a.ID, b.ID)
		assert.Equal(t, "audience_builder", a.ID)
	})

	t.Run("empty stage", func(t *testing.T) {
		_, ok := PreferredForStage(CategoryIdentityRail, "")
		assert.False(t, ok)
	})
}

func TestVisibleIn(t *testing.T) {
	n, ok := Get("snowflake_warehouse")
	require.True(t, ok)
	assert.True(t, n.VisibleIn("snowflake-native"))
	assert.False(t, n.VisibleIn("gcp-lakehouse"))

	open, ok := Get("crm_salesforce")
	require.True(t, ok)
	assert.True(t, open.VisibleIn("gcp-lakehouse"))
}

func TestSingletonRoles(t *testing.T) {
	for _, role := range SingletonRoles() {
		found := false
		for _, n := range All() {
			if n.Role == role {
				found = true
				break
			}
		}
		assert.True(t, found, "no catalog entry holds role %s", role)
	}
}
