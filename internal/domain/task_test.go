package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSet(t *testing.T) {
	t.Run("has reports membership", func(t *testing.T) {
		s := NewFieldSet(FieldTitle)
		assert.True(t, s.Has(FieldTitle))
		assert.False(t, s.Has(FieldDescription))
	})

	t.Run("touches embedded for embeddable fields", func(t *testing.T) {
		assert.True(t, NewFieldSet(FieldTitle).TouchesEmbedded())
		assert.True(t, NewFieldSet(FieldDescription).TouchesEmbedded())
		assert.True(t, NewFieldSet(FieldTitle, FieldDescription).TouchesEmbedded())
	})

	t.Run("does not touch embedded for unrelated fields", func(t *testing.T) {
		s := FieldSet{"due_date": {}, "assignee": {}, "status": {}}
		assert.False(t, s.TouchesEmbedded())
	})

	t.Run("empty set touches nothing", func(t *testing.T) {
		assert.False(t, NewFieldSet().TouchesEmbedded())
	})
}

func TestTaskContent(t *testing.T) {
	task := &Task{
		ID:          1,
		ProjectID:   10,
		Title:       "Fix login bug",
		Description: "Users cannot log in with SSO",
	}

	t.Run("returns field text", func(t *testing.T) {
		assert.Equal(t, "Fix login bug", task.Content(FieldTitle))
		assert.Equal(t, "Users cannot log in with SSO", task.Content(FieldDescription))
	})

	t.Run("unknown field returns empty string", func(t *testing.T) {
		assert.Equal(t, "", task.Content(Field("priority")))
	})
}

func TestTaskHasContent(t *testing.T) {
	t.Run("non-empty field has content", func(t *testing.T) {
		task := &Task{Title: "Fix bug"}
		assert.True(t, task.HasContent(FieldTitle))
	})

	t.Run("empty field has no content", func(t *testing.T) {
		task := &Task{Title: "Fix bug", Description: ""}
		assert.False(t, task.HasContent(FieldDescription))
	})

	t.Run("whitespace-only field has no content", func(t *testing.T) {
		task := &Task{Description: "   \n\t  "}
		assert.False(t, task.HasContent(FieldDescription))
	})
}
