package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_DisplayAuthors(t *testing.T) {
	rec := Record{Authors: []Author{
		{Given: "Ada", Family: "Lovelace"},
		{Given: "Grace", Family: "Hopper"},
	}}

	assert.Equal(t, "Ada Lovelace, Grace Hopper", rec.DisplayAuthors())
}

func TestRecord_DisplayAuthors_PartialNames(t *testing.T) {
	rec := Record{Authors: []Author{
		{Family: "Plato"},
		{Given: "Ada", Family: "Lovelace"},
	}}

	assert.Equal(t, "Plato, Ada Lovelace", rec.DisplayAuthors())
}

func TestRecord_DisplayAuthors_Empty(t *testing.T) {
	assert.Empty(t, Record{}.DisplayAuthors())
}
