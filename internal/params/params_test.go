package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"org", "id"}, Placeholders("orgs/<org>/users/<id>.md"))
	assert.Empty(t, Placeholders("plain/page.md"))
	assert.Equal(t, []string{"a", "b"}, Placeholders("<a><b>.md"))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("a/<id>.md", []string{"id"}))
	require.NoError(t, Validate("a/<id>/<slug>.md", []string{"slug"}))
	require.NoError(t, Validate("a/<id>.md", nil))
	require.NoError(t, Validate("plain.md", nil))

	err := Validate("a/<id>.md", []string{"user_id"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "user_id")
	name, ok := errors.ContextString(err, "param")
	require.True(t, ok)
	assert.Equal(t, "user_id", name)

	err = Validate("a/<id>.md", []string{"id", "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")

	err = Validate("a/<id>.md", []string{""})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestValidate_ReportsFirstMissing(t *testing.T) {
	err := Validate("x/<a>.md", []string{"a", "b", "c"})
	require.Error(t, err)
	name, _ := errors.ContextString(err, "param")
	assert.Equal(t, "b", name)
}
