package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStorefrontAgainstDemoStore(t *testing.T) {
	out, err := execute(t, "storefront", "--store", "memory", "--sort", "name")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, demoRestaurants)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "1."))
}

func TestCommandValidation(t *testing.T) {
	_, err := execute(t, "status", "--store", "memory", "--restaurant", "")
	assert.ErrorContains(t, err, "--restaurant")

	_, err = execute(t, "mark-paid", "--store", "memory", "--restaurant", "r1", "--week", "next week")
	assert.ErrorContains(t, err, "--week")

	_, err = execute(t, "storefront", "--store", "memory", "--sort", "distance")
	assert.Error(t, err)
}

func TestStatusOfUnknownRestaurantIsEmpty(t *testing.T) {
	out, err := execute(t, "status", "--store", "memory", "--restaurant", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, `"penalty_level": 0`)
	assert.Contains(t, out, `"unpaid_periods": []`)
}

func TestIntelForUnknownItemIsUnavailable(t *testing.T) {
	out, err := execute(t, "intel", "--store", "memory", "--restaurant", "nobody", "--item", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "no comparable items")
}

func TestInvoicesFromEmptyArchive(t *testing.T) {
	out, err := execute(t, "invoices", "--store", "memory", "--restaurant", "nobody", "--archived")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}
