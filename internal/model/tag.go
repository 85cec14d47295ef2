// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Tag labels articles and events through their join tables.
// Names are unique at the data layer.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
