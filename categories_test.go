// categories_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Electronics", "electronics"},
		{"Home & Garden", "home-garden"},
		{"Toys, Games & Hobbies", "toys-games-hobbies"},
		{"  Spaced  Out  ", "-spaced-out-"},
		{"already-slugged", "already-slugged"},
		{"Ünïcode Stuff", "-n-code-stuff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.name), "slugify(%q)", tt.name)
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	assert.Equal(t, slugify("Home & Garden"), slugify("Home & Garden"))
}
