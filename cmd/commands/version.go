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

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/numaproj/numacalc"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			v := numacalc.GetVersion()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s: %s\n", CLIName, v.Version)
			_, _ = fmt.Fprintf(w, "  BuildDate: %s\n", v.BuildDate)
			_, _ = fmt.Fprintf(w, "  GitCommit: %s\n", v.GitCommit)
			_, _ = fmt.Fprintf(w, "  GitTreeState: %s\n", v.GitTreeState)
			if v.GitTag != "" {
				_, _ = fmt.Fprintf(w, "  GitTag: %s\n", v.GitTag)
			}
			_, _ = fmt.Fprintf(w, "  GoVersion: %s\n", v.GoVersion)
			_, _ = fmt.Fprintf(w, "  Compiler: %s\n", v.Compiler)
			_, _ = fmt.Fprintf(w, "  Platform: %s\n", v.Platform)
		},
	}
}
