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

package runner

import (
	"github.com/spaolacci/murmur3"

	"github.com/numaproj/numacalc/pkg/window/partition"
)

// shardFor returns the shard owning a partition. All the records of a partition go to the same
// shard, so their order is kept.
func shardFor(id partition.ID, shards int) int {
	if shards <= 1 {
		return 0
	}
	return int(murmur3.Sum32([]byte(id.String())) % uint32(shards))
}
