// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"fmt"
	"os"

	"github.com/specialistvlad/deploygridgo/internal/module"
	"gopkg.in/yaml.v3"
)

// loadParameters reads the parameters of moduleName from a file shaped like
//
//	{"OpenMarketModule": {"fee": 250}}
//
// YAML is a superset of JSON, so one decoder handles both formats. A module
// missing from the file gets no parameters.
func loadParameters(path, moduleName string) (module.Parameters, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	var all map[string]map[string]any
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode parameters file %s: %w", path, err)
	}
	return module.Parameters(all[moduleName]), nil
}
