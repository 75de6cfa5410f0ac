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
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/quickxfer/cmd/quickxfer/opts"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/log"
)

// NewCatalogCmd creates the catalog command
func NewCatalogCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		worldPath string
		members   string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load the item classification catalog and summarize it",
		Long: `Catalog loads every category data file from the data directory, resolving
each reference against the forms of a world fixture. It will:
1. Create the data directory when it is missing
2. Load each category from its folder or its single file
3. Resolve the intrinsic keywords
4. Print one line per category and a fingerprint of the loaded sets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userLog := log.FromContext(ctx)

			session, err := rootOpts.Start(ctx, worldPath)
			if err != nil {
				return err
			}
			cat, report := session.Plugin.Catalog(), session.Plugin.Report()

			userLog.Header("catalog " + report.Dir)
			rejected := map[category.Category]int{}
			for _, f := range report.Files {
				rejected[f.Category] += f.Rejected
			}
			for _, c := range category.OfKind(category.KindListed) {
				cr := report.Categories[c]
				userLog.LogCategory(ctx, log.CategoryEntry{
					Name:     c.String(),
					Source:   cr.Source.String(),
					IDs:      cr.IDs,
					Rejected: rejected[c],
					Failed:   cr.Failed,
				})
			}
			userLog.LogNewline()

			data := pterm.TableData{{"Category", "Source", "Files", "IDs", "Rejected"}}
			for _, c := range category.OfKind(category.KindListed) {
				cr := report.Categories[c]
				data = append(data, []string{
					c.String(),
					cr.Source.String(),
					strconv.Itoa(cr.Files),
					strconv.Itoa(cr.IDs),
					strconv.Itoa(rejected[c]),
				})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)

			if members != "" {
				c, ok := category.Parse(members)
				if !ok {
					return errors.Errorf("unknown category %q", members)
				}
				for _, id := range cat.Members(c) {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
			}

			for _, f := range report.Failed() {
				userLog.Errorf("%s: %v", f.Path, f.Err)
			}
			userLog.Successf("fingerprint %s", cat.Fingerprint())
			return nil
		},
	}

	cmd.Flags().StringVarP(&worldPath, "world", "w", "", "world fixture (yaml) providing the form database")
	cmd.Flags().StringVar(&members, "members", "", "also print the identifiers of this category")
	_ = cmd.MarkFlagRequired("world")
	return cmd
}
