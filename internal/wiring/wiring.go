// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lane/internal/adapters/cache"
	_ "go.trai.ch/lane/internal/adapters/config"
	_ "go.trai.ch/lane/internal/adapters/fs"
	_ "go.trai.ch/lane/internal/adapters/logger"
	_ "go.trai.ch/lane/internal/adapters/shell"
	_ "go.trai.ch/lane/internal/adapters/telemetry"
	_ "go.trai.ch/lane/internal/adapters/toolchain"
	// Register app and engine nodes.
	_ "go.trai.ch/lane/internal/app"
	_ "go.trai.ch/lane/internal/engine/pipeline"
)
