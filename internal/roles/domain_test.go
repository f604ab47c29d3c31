package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Role{
		"admin":      Admin,
		"ADMIN":      Admin,
		" Admin ":    Admin,
		"proprietor": Proprietor,
		"Proprietor": Proprietor,
		"staff":      Staff,
		"manager":    Staff,
		"":           Staff,
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), in)
	}
}

func TestIsElevated(t *testing.T) {
	assert.True(t, Admin.IsElevated())
	assert.True(t, Proprietor.IsElevated())
	assert.False(t, Staff.IsElevated())
	assert.True(t, IsElevated("PROPRIETOR"))
	assert.False(t, IsElevated("superuser"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("Staff"))
	assert.False(t, Valid("root"))
}

func TestNarrow(t *testing.T) {
	assert.Equal(t, Staff, Narrow(Admin, Staff))
	assert.Equal(t, Staff, Narrow(Staff, Admin))
	assert.Equal(t, Proprietor, Narrow(Admin, Proprietor))
	assert.Equal(t, Admin, Narrow(Admin, Admin))
}
