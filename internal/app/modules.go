// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"github.com/specialistvlad/deploygridgo/internal/registry"
	"github.com/specialistvlad/deploygridgo/modules/openmarket"
)

// coreModules is the definitive list of all Go modules that are compiled into
// the deploygrid binary.
var coreModules = []registry.Provider{
	openmarket.Module{},
}
