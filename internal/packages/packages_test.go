package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialitePackage(t *testing.T) {
	tests := []struct {
		release string
		want    string
	}{
		{"14.04", SpatialiteOld},
		{"12.04", SpatialiteOld},
		{"16.04", SpatialiteNew},
		{"14.10", SpatialiteNew},
		{"20.04", SpatialiteNew},
		{"", SpatialiteOld}, // undetectable release falls back to the old variant
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SpatialitePackage(tt.release), "release %q", tt.release)
	}
}

func TestList(t *testing.T) {
	pkgs := List("16.04")

	assert.Len(t, pkgs, len(basePackages)+1)
	assert.Contains(t, pkgs, "libgdal-dev")
	assert.Contains(t, pkgs, "python-pip")
	assert.Equal(t, SpatialiteNew, pkgs[len(pkgs)-1])
	assert.NotContains(t, pkgs, SpatialiteOld)
}

func TestListDoesNotShareBackingArray(t *testing.T) {
	a := List("14.04")
	b := List("16.04")

	a[0] = "mutated"
	assert.NotEqual(t, a[0], b[0])
}
