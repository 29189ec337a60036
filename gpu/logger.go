// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"log/slog"

	"github.com/gogpu/framecap"
)

// logger returns the logger configured with framecap.SetLogger.
// All logging in gpu goes through this function.
func logger() *slog.Logger { return framecap.Logger() }
