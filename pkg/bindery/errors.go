// Copyright Tinkerlang Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package bindery

import (
	"github.com/pkg/errors"
)

// ErrNameMismatch signals an attempt to bind a reference to a declaration
// whose display name differs from the reference's current name.  This is an
// expected, recoverable condition: the bind simply fails and the reference
// remains unresolved.
//
// By contrast, rebinding an already-bound reference and disconnecting a type
// edge which was never connected are invariant violations under correct editor
// sequencing, and panic rather than return an error.
var ErrNameMismatch = errors.New("name mismatch")

// IsNameMismatch checks whether a given error arose from a bind-time name
// check.
func IsNameMismatch(err error) bool {
	return errors.Cause(err) == ErrNameMismatch
}
