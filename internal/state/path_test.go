package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{"empty is root", "", Path{}},
		{"single key", "cart", Path{"cart"}},
		{"nested", "cart/items", Path{"cart", "items"}},
		{"separator only", "/", Path{}},
		{"trailing separator", "cart/", Path{"cart"}},
		{"doubled separator", "cart//items", Path{"cart", "items"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePath(tt.input))
		})
	}
}

func TestPath_Accessors(t *testing.T) {
	p := Path{"a", "b", "c"}

	assert.Equal(t, "a/b/c", p.String())
	assert.Equal(t, Path{"a", "b"}, p.Parent())
	assert.Equal(t, "c", p.Key())
	assert.False(t, p.IsRoot())

	root := Path{}
	assert.True(t, root.IsRoot())
	assert.Equal(t, "", root.Key())
	assert.Equal(t, Path{}, root.Parent())
}

func TestPath_Child_DoesNotAliasParent(t *testing.T) {
	base := make(Path, 1, 4) // spare capacity to expose append aliasing
	base[0] = "a"

	left := base.Child("left")
	right := base.Child("right")

	assert.Equal(t, Path{"a", "left"}, left)
	assert.Equal(t, Path{"a", "right"}, right)
}
