// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/quickxfer/cmd/quickxfer/opts"
	"github.com/walteh/quickxfer/pkg/log"
	"github.com/walteh/quickxfer/pkg/plugin"
	"github.com/walteh/quickxfer/pkg/transfer"
)

// NewTransferCmd creates the transfer command
func NewTransferCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		worldPath string
		open      string
		action    int
		subtype   int
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Run a transfer action against a world fixture",
		Long: `Transfer starts the plugin against a world fixture and runs one scripting
request. Actions 1-9 take from the open container, 12-20 give to it:
  1/12 weapons and ammo     2/13 armor (1: jewelry)
  3/14 potions (1: poisons)  4/15 scrolls
  5/16 food (1: raw, 2: cooked, 3: drinks, 4: sweets)
  6/17 ingredients           7/18 books (1: spell tomes)
  8/19 keys                  9/20 misc (1: soul gems, 2: ores, 3: gems,
                                       4: leather and pelts, 5: building materials)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userLog := log.FromContext(ctx)

			session, err := rootOpts.Start(ctx, worldPath)
			if err != nil {
				return err
			}
			if open != "" {
				if err := session.Host.OpenContainer(open); err != nil {
					return errors.Errorf("opening container: %w", err)
				}
			}
			if _, ok := session.Bridge.Functions[plugin.ScriptName+"."+plugin.FunctionName]; !ok {
				return errors.New("plugin did not register its scripting function")
			}

			route := transfer.Lookup(action, subtype)
			if route.Empty() {
				userLog.Warningf("action %d subtype %d does nothing", action, subtype)
				return nil
			}

			results := session.Plugin.StartTransfer(ctx, action, subtype)
			for _, res := range results {
				userLog.StartTransfer(ctx, log.TransferOperation{
					Category:    res.Category.String(),
					Source:      res.Source,
					Destination: res.Destination,
					RequestID:   res.RequestID,
				})
				for _, l := range append(res.Moved, res.Failed...) {
					userLog.LogMove(ctx, log.ItemMove{
						Name:    l.Name,
						Count:   l.Count,
						Weight:  l.Weight,
						Clipped: l.Clipped,
						Err:     l.Err,
					})
				}
				userLog.EndTransfer(ctx)
			}

			ran := session.Host.RunUITasks()
			userLog.Successf("%s done, %d inventory refreshes", route.Direction, ran)
			return nil
		},
	}

	cmd.Flags().StringVarP(&worldPath, "world", "w", "", "world fixture (yaml)")
	cmd.Flags().StringVar(&open, "open", "", "container to open, overrides the fixture")
	cmd.Flags().IntVarP(&action, "action", "a", 0, "action code")
	cmd.Flags().IntVarP(&subtype, "subtype", "s", 0, "subtype code")
	_ = cmd.MarkFlagRequired("world")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}
