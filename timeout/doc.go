// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout provides the pipeline layer which bounds the
// wall-clock duration of each invocation, along with flexible policies
// for choosing the duration. A generic interface for timeout policies is
// provided, Policy, along with several useful policy generating
// functions and built-in policies.
package timeout
