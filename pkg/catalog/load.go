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

package catalog

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/form"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single data line; longer lines are dropped like any
// other malformed line
const maxLineSize = 64 * 1024

type job struct {
	category category.Category
	path     string
}

// 🚀 LoadAll reads every file-backed category from the data directory.
//
// A category folder (Dir/<Folder>/*.txt) wins over a category file
// (Dir/<file>.txt). Files are parsed by a bounded pool of workers, each one
// merging a private set into the shared category set once its file is done.
// LoadAll blocks until every file was handled. Problems are logged and
// recorded in the report; they never stop other files or categories.
func (c *Catalog) LoadAll(ctx context.Context) *LoadReport {
	logger := zerolog.Ctx(ctx).With().Str("module", "catalog").Logger()
	report := newLoadReport(c.opts.Dir)

	jobs := c.discover(logger, report)
	if len(jobs) == 0 {
		logger.Warn().Str("dir", c.opts.Dir).Msg("no category data files found")
		report.finish(c)
		return report
	}

	workers := min(c.opts.MaxWorkers, len(jobs))
	logger.Debug().
		Int("files", len(jobs)).
		Int("workers", workers).
		Msg("loading category data")

	queue := make(chan job)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range queue {
				report.addFile(c.loadFile(logger, j))
			}
			return nil
		})
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	_ = g.Wait()

	report.finish(c)
	for _, cat := range category.OfKind(category.KindListed) {
		logger.Info().
			Str("category", cat.String()).
			Str("source", report.Categories[cat].Source.String()).
			Int("ids", report.Categories[cat].IDs).
			Msg("category loaded")
	}
	return report
}

// discover finds the data files of every listed category. A missing data
// directory is created so users have somewhere to put files.
func (c *Catalog) discover(logger zerolog.Logger, report *LoadReport) []job {
	dir := c.opts.Dir
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().Str("dir", dir).Msg("data directory missing, creating it")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("creating data directory")
		}
		return nil
	case err != nil:
		logger.Error().Err(err).Str("dir", dir).Msg("reading data directory")
		return nil
	case !info.IsDir():
		logger.Error().Str("dir", dir).Msg("data directory is not a directory")
		return nil
	}

	var jobs []job
	for _, cat := range category.OfKind(category.KindListed) {
		desc := category.Describe(cat)

		folder := filepath.Join(dir, desc.Folder)
		if fi, err := os.Stat(folder); err == nil && fi.IsDir() {
			files, err := c.listFolder(logger, folder)
			if err != nil {
				logger.Error().Err(err).Str("category", cat.String()).Str("folder", folder).Msg("listing category folder")
				report.setSource(cat, SourceMissing)
				continue
			}
			if len(files) == 0 {
				logger.Warn().Str("category", cat.String()).Str("folder", folder).Msg("category folder has no data files")
			}
			report.setSource(cat, SourceFolder)
			for _, f := range files {
				jobs = append(jobs, job{category: cat, path: f})
			}
			continue
		}

		file := filepath.Join(dir, desc.File)
		if fi, err := os.Stat(file); err == nil && fi.Mode().IsRegular() {
			report.setSource(cat, SourceFile)
			jobs = append(jobs, job{category: cat, path: file})
			continue
		}

		logger.Warn().
			Str("category", cat.String()).
			Str("folder", folder).
			Str("file", file).
			Msg("no data for category, leaving it empty")
		report.setSource(cat, SourceMissing)
	}
	return jobs
}

// listFolder returns the regular files with the data extension directly
// inside folder, sorted by name.
func (c *Catalog) listFolder(logger zerolog.Logger, folder string) ([]string, error) {
	fsys := os.DirFS(folder)
	matches, err := doublestar.Glob(fsys, "*"+c.opts.Extension)
	if err != nil {
		return nil, errors.Errorf("globbing %s: %w", folder, err)
	}
	slices.Sort(matches)

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		fi, err := fs.Stat(fsys, m)
		if err != nil || !fi.Mode().IsRegular() {
			logger.Debug().Str("folder", folder).Str("entry", m).Msg("skipping non-regular entry")
			continue
		}
		files = append(files, filepath.Join(folder, m))
	}
	return files, nil
}

// loadFile parses one file into a private set and merges it into the
// category's shared set. Only the merge takes the category lock.
func (c *Catalog) loadFile(logger zerolog.Logger, j job) FileReport {
	res := FileReport{Category: j.category, Path: j.path}

	f, err := os.Open(j.path)
	if err != nil {
		logger.Error().Err(err).Str("file", j.path).Msg("opening data file")
		res.Err = err
		return res
	}
	defer f.Close()

	local, stats, err := c.parse(logger, j.path, f)
	res.Accepted, res.Rejected = stats.accepted, stats.rejected
	if err != nil {
		logger.Error().Err(err).Str("file", j.path).Msg("reading data file, skipping it")
		res.Err = err
		return res
	}

	res.Added = c.listed[j.category].merge(local)
	logger.Debug().
		Str("category", j.category.String()).
		Str("file", j.path).
		Int("accepted", res.Accepted).
		Int("rejected", res.Rejected).
		Int("added", res.Added).
		Msg("data file loaded")
	return res
}

type parseStats struct {
	accepted int
	rejected int
}

// parse reads one identifier literal per line. Blank lines and lines starting
// with # or ; are ignored; lines that fail to parse or resolve, or run past
// maxLineSize, are logged and dropped.
func (c *Catalog) parse(logger zerolog.Logger, path string, r io.Reader) (map[form.ID]struct{}, parseStats, error) {
	local := make(map[form.ID]struct{})
	var stats parseStats

	rd := bufio.NewReader(r)
	var buf []byte
	lineNo := 0
	tooLong := false
	for {
		chunk, more, err := rd.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, errors.Errorf("reading %s: %w", path, err)
		}
		if !tooLong && len(buf)+len(chunk) > maxLineSize {
			tooLong = true
		}
		if !tooLong {
			buf = append(buf, chunk...)
		}
		if more {
			continue
		}

		lineNo++
		line := strings.TrimSpace(string(buf))
		buf = buf[:0]
		if tooLong {
			tooLong = false
			logger.Warn().Str("file", path).Int("line", lineNo).Int("limit", maxLineSize).Msg("line too long")
			stats.rejected++
			continue
		}
		if isSkippable(line) {
			continue
		}

		id, ok, err := form.ParseAndResolve(c.resolver, line)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Int("line", lineNo).Msg("malformed form reference")
			stats.rejected++
			continue
		}
		if !ok {
			logger.Warn().Str("file", path).Int("line", lineNo).Str("ref", line).Msg("form reference did not resolve")
			stats.rejected++
			continue
		}
		local[id] = struct{}{}
		stats.accepted++
	}
	return local, stats, nil
}

func isSkippable(line string) bool {
	return line == "" || line[0] == '#' || line[0] == ';'
}
