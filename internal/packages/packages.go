package packages

import (
	"github.com/ambry-data/ambryctl/internal/osrelease"
)

// Spatial library package variants. The Ubuntu archive renamed the
// libspatialite runtime package after trusty (14.04).
const (
	SpatialiteOld = "libspatialite5"
	SpatialiteNew = "libspatialite7"

	// Release threshold in ReleaseNum form: releases above 14.04 get
	// the newer-named variant
	spatialiteThreshold = 1404
)

// basePackages is the fixed OS package set needed to build and run
// ambry and its geospatial dependencies
var basePackages = []string{
	"gcc",
	"g++",
	"git",
	"curl",
	"language-pack-en",
	"python-pip",
	"python-dev",
	"libffi-dev",
	"sqlite3",
	"libsqlite3-dev",
	"libpq-dev",
	"libgdal-dev",
	"libspatialindex-dev",
	"spatialite-bin",
}

// SpatialitePackage selects the spatial library package name for a
// release string such as "14.04"
func SpatialitePackage(release string) string {
	if osrelease.ReleaseNum(release) > spatialiteThreshold {
		return SpatialiteNew
	}
	return SpatialiteOld
}

// List assembles the full OS package list for the given release
func List(release string) []string {
	pkgs := make([]string, 0, len(basePackages)+1)
	pkgs = append(pkgs, basePackages...)
	pkgs = append(pkgs, SpatialitePackage(release))
	return pkgs
}
