/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package row

import "fmt"

// SchemaValidationError is returned when a value does not match the schema it is expected to follow.
type SchemaValidationError struct {
	Field   string
	Index   int
	Message string
}

func (e SchemaValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema validation failed: %s", e.Message)
	}
	return fmt.Sprintf("schema validation failed for field %q (index %d): %s", e.Field, e.Index, e.Message)
}
