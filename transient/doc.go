// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors returned by a pipeline according
// to whether, and why, a later call might succeed where this one failed.
package transient
