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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc"
	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/config"
	"github.com/numaproj/numacalc/pkg/row"
	"github.com/numaproj/numacalc/pkg/shared/expr"
	"github.com/numaproj/numacalc/pkg/shared/logging"
	"github.com/numaproj/numacalc/pkg/shared/util"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

func NewValidateCommand() *cobra.Command {
	var configFile string

	command := &cobra.Command{
		Use:   "validate",
		Short: "Validate a calc spec and compile its expression",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if configFile == "" {
				return fmt.Errorf("a calc spec file is required, set --config or %s", v1alpha1.EnvConfigFile)
			}
			spec, err := config.LoadCalcSpec(configFile)
			if err != nil {
				return err
			}
			log := logging.NewLogger().Named("validate")
			compiler, err := expr.NewCompiler(expr.WithEngineSpec(spec.Engine), expr.WithLogger(log))
			if err != nil {
				return err
			}
			noop := calc.EmitterFunc(func(context.Context, partition.ID, time.Time, row.Row) error { return nil })
			e, err := calc.NewEvaluator(*spec, compiler, noop, calc.WithLogger(log))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(logging.WithLogger(cmd.Context(), log))
			defer cancel()
			defer func() {
				err = multierr.Append(err, e.Teardown(ctx))
			}()
			if err := e.Setup(ctx); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Expression of %q is valid, referenced columns:\n", spec.Name)
			for _, i := range e.ReferencedColumns() {
				f := spec.InputSchema.Fields[i]
				_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", applier.ColumnName(i), f.Name, f.Type)
			}
			return nil
		},
	}
	command.Flags().StringVarP(&configFile, "config", "c", util.LookupEnvStringOr(v1alpha1.EnvConfigFile, ""), "Calc spec file, YAML or JSON")
	return command
}
