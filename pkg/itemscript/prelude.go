// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package itemscript

// DefaultPrelude is loaded before any other script unless WithNoPrelude
// is given.
const DefaultPrelude = `set subject_nr 0
set subject_parity even
`
