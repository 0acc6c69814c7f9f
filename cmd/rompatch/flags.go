package main

import (
	"github.com/spf13/viper"

	"github.com/jamesainslie/rompatch/pkg/rompatch/search"
)

// patchExtensions are the extensions search expansion considers when
// gathering patch files.
var patchExtensions = []string{".bps", ".ips"}

// romExtensions are the extensions search expansion considers when
// gathering ROM images.
var romExtensions = []string{
	".nes", ".sfc", ".smc", ".gba", ".gbc", ".gen", ".md",
	".bin", ".rom", ".z64", ".n64", ".v64", ".sms", ".pce",
}

// searchScope resolves the configured expansion scope from viper.
func searchScope() (search.Scope, error) {
	return search.ParseScope(viper.GetString("scope"))
}

// expandSelection widens the explicit selection per the configured scope,
// keeping excludePath out of the results.
func expandSelection(selection []string, extensions []string, excludePath string) ([]string, error) {
	scope, err := searchScope()
	if err != nil {
		return nil, err
	}

	return search.Expand(selection, search.Options{
		Scope:       scope,
		Extensions:  extensions,
		ExcludePath: excludePath,
	})
}
